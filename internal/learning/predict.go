package learning

import (
	"context"
	"math"
	"strings"

	"github.com/coinsort/coinsort/internal/model"
)

// defaultPredictedConfidence is returned when nothing learned supports or
// contradicts the suggested category.
const defaultPredictedConfidence = 0.5

// PredictConfidence estimates how confident a suggested category would be
// for this user based on what the learner has seen: a directly matching
// pattern scores by its own confidence plus frequency, same-category
// patterns average, anything else gets the neutral default.
func (l *Learner) PredictConfidence(ctx context.Context, txn model.Transaction, category, userID string) (float64, error) {
	if userID == "" || category == "" {
		return defaultPredictedConfidence, nil
	}

	patterns, err := l.userPatterns(ctx, userID)
	if err != nil {
		return defaultPredictedConfidence, err
	}

	var sameCategory []model.LearningPattern
	for _, pattern := range patterns {
		if pattern.Category != category {
			continue
		}
		if patternMatches(txn, pattern) {
			return math.Min(0.95, pattern.Confidence+float64(pattern.Frequency)*0.01), nil
		}
		sameCategory = append(sameCategory, pattern)
	}

	if len(sameCategory) > 0 {
		var sum float64
		for _, pattern := range sameCategory {
			sum += pattern.Confidence
		}
		return math.Min(0.85, sum/float64(len(sameCategory))), nil
	}

	return defaultPredictedConfidence, nil
}

// patternMatches reports whether the pattern's keyword appears in the
// transaction description or vendor.
func patternMatches(txn model.Transaction, pattern model.LearningPattern) bool {
	keyword := strings.ToLower(pattern.Keyword)
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(txn.Description), keyword) ||
		strings.Contains(strings.ToLower(txn.Vendor), keyword)
}

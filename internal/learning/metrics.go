package learning

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coinsort/coinsort/internal/common"
	"github.com/coinsort/coinsort/internal/model"
)

// Confidence and scoring parameters used by the suggestion signals and
// the derived metrics.
const (
	highConfidenceCutoff = 0.7
	accuracyWindow       = 10
	satisfactionWindow   = 20
)

func similarUserConfidence(totalFrequency int) float64 {
	return math.Min(0.7, float64(totalFrequency)/20)
}

func spendingSuggestionConfidence(frequency int) float64 {
	return math.Min(0.8, float64(frequency)/10)
}

func vendorMatchConfidence(matchCount int) float64 {
	return math.Min(0.9, 0.6+float64(matchCount)*0.05)
}

// Metrics derives the learning metrics for a user from the correction
// history and learned rules, cached until the next correction.
func (l *Learner) Metrics(ctx context.Context, userID string) (model.LearningMetrics, error) {
	if userID == "" {
		return model.LearningMetrics{}, fmt.Errorf("user id must not be empty")
	}

	if metrics, ok := l.cache.getMetrics(userID); ok {
		return metrics, nil
	}

	corrections, err := l.store.GetCorrections(ctx, userID)
	if err != nil {
		return model.LearningMetrics{}, fmt.Errorf("failed to load corrections: %w", err)
	}

	learned, err := l.store.GetLearnedRules(ctx, userID)
	if err != nil {
		return model.LearningMetrics{}, fmt.Errorf("failed to load learned rules: %w", err)
	}

	categories := make(map[string]bool, len(learned))
	for _, rule := range learned {
		categories[rule.Category] = true
	}

	metrics := model.LearningMetrics{
		TotalCorrections:    len(corrections),
		AccuracyImprovement: accuracyImprovement(corrections),
		CategoriesLearned:   len(categories),
		PatternsRecognized:  len(learned),
		UserSatisfaction:    userSatisfaction(corrections),
		LastUpdated:         time.Now().UTC(),
	}

	l.cache.setMetrics(userID, metrics)
	return metrics, nil
}

// accuracyImprovement compares the fraction of high-confidence corrections
// in the most recent ten against the preceding ten. Positive means the
// engine's first guesses are getting better. Zero when fewer than twenty
// corrections exist.
func accuracyImprovement(corrections []model.Correction) float64 {
	if len(corrections) < 2*accuracyWindow {
		return 0
	}

	recent := corrections[len(corrections)-accuracyWindow:]
	older := corrections[len(corrections)-2*accuracyWindow : len(corrections)-accuracyWindow]

	return highConfidenceFraction(recent) - highConfidenceFraction(older)
}

func highConfidenceFraction(corrections []model.Correction) float64 {
	high := 0
	for _, c := range corrections {
		if c.Confidence > highConfidenceCutoff {
			high++
		}
	}
	return float64(high) / float64(len(corrections))
}

// userSatisfaction is the mean confidence over the most recent twenty
// corrections; zero when there are none.
func userSatisfaction(corrections []model.Correction) float64 {
	if len(corrections) == 0 {
		return 0
	}

	if len(corrections) > satisfactionWindow {
		corrections = corrections[len(corrections)-satisfactionWindow:]
	}

	var sum float64
	for _, c := range corrections {
		sum += c.Confidence
	}
	return sum / float64(len(corrections))
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}

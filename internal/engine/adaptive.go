package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/coinsort/coinsort/internal/model"
)

// classifyByAdaptive infers a category from the user's history when no
// explicit rule or memory exists: textually similar past transactions
// first, then spending-amount buckets.
func (e *Engine) classifyByAdaptive(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) model.CategorizationResult {
	if prefs.UserID == "" {
		return zeroResult(model.SourceAdaptive, "No user ID")
	}

	if result, ok := e.similarTransactionResult(ctx, txn, prefs.UserID); ok {
		return result
	}

	if result, ok := e.spendingPatternResult(ctx, txn, prefs.UserID); ok {
		return result
	}

	return zeroResult(model.SourceAdaptive, "No patterns found")
}

// similarTransactionResult uses the leading token of the description as a
// textual similarity proxy against the user's categorized history.
func (e *Engine) similarTransactionResult(ctx context.Context, txn model.Transaction, userID string) (model.CategorizationResult, bool) {
	token := leadingToken(txn.Description)
	if token == "" {
		return model.CategorizationResult{}, false
	}

	similar, err := e.store.GetSimilarTransactions(ctx, userID, token, similarTxnLimit)
	if err != nil {
		e.logger.Warn("similar transaction lookup failed", "user_id", userID, "error", err)
		return model.CategorizationResult{}, false
	}
	if len(similar) == 0 {
		return model.CategorizationResult{}, false
	}

	category, subcategory := mostCommonCategory(similar)

	return model.CategorizationResult{
		Category:    category,
		Subcategory: subcategory,
		Confidence:  similarityConfidence(len(similar)),
		Source:      model.SourceAdaptive,
		Reasoning:   fmt.Sprintf("Based on %d similar transactions", len(similar)),
	}, true
}

// spendingPatternResult buckets the amount into $50-wide ranges and picks
// the category the user most frequently spends in within that bucket.
func (e *Engine) spendingPatternResult(ctx context.Context, txn model.Transaction, userID string) (model.CategorizationResult, bool) {
	rangeMin, _ := model.AmountBucket(txn.Amount)

	patterns, err := e.store.GetSpendingPatterns(ctx, userID, rangeMin, spendingPatternLimit)
	if err != nil {
		e.logger.Warn("spending pattern lookup failed", "user_id", userID, "error", err)
		return model.CategorizationResult{}, false
	}
	if len(patterns) == 0 {
		return model.CategorizationResult{}, false
	}

	best := patterns[0]
	for _, p := range patterns[1:] {
		if p.Frequency > best.Frequency {
			best = p
		}
	}

	var alternatives []model.Alternative
	for _, p := range patterns[:min(len(patterns), 3)] {
		alternatives = append(alternatives, model.Alternative{
			Category:   p.Category,
			Confidence: spendingAlternativeConfidence(p.Frequency),
		})
	}

	return model.CategorizationResult{
		Category:     best.Category,
		Confidence:   spendingConfidence(best.Frequency),
		Source:       model.SourceAdaptive,
		Reasoning:    "Based on spending pattern analysis",
		Alternatives: alternatives,
	}, true
}

// leadingToken returns the first whitespace-separated word, lower-cased.
func leadingToken(description string) string {
	fields := strings.Fields(description)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// mostCommonCategory picks the most frequent (category, subcategory) pair.
func mostCommonCategory(txns []model.CategorizedTransaction) (category, subcategory string) {
	counts := make(map[string]int)
	for _, txn := range txns {
		counts[txn.Category+"|"+txn.Subcategory]++
	}

	var bestKey string
	bestCount := -1
	for key, count := range counts {
		if count > bestCount || (count == bestCount && key < bestKey) {
			bestKey = key
			bestCount = count
		}
	}

	parts := strings.SplitN(bestKey, "|", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

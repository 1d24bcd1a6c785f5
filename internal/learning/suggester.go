package learning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/coinsort/coinsort/internal/model"
)

// Query limits for the suggestion signals.
const (
	patternFetchLimit  = 20
	similarUserLimit   = 10
	spendingFetchLimit = 5
	vendorRuleLimit    = 3
	maxSuggestions     = 5
)

// Suggestions produces ranked, deduplicated category suggestions for
// interactive categorization assistance. Candidates come from the user's
// own learned patterns, similar users' spending in the same amount bucket,
// the user's own spending-pattern table, and vendor matches against the
// user's learned rules. Each signal is best effort: a failing signal is
// logged and skipped, never fatal.
func (l *Learner) Suggestions(ctx context.Context, txn model.Transaction, userID string) ([]model.CategorySuggestion, error) {
	if userID == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var candidates []model.CategorySuggestion
	candidates = append(candidates, l.userHistorySuggestions(ctx, userID)...)
	candidates = append(candidates, l.similarUserSuggestions(ctx, txn, userID)...)
	candidates = append(candidates, l.spendingPatternSuggestions(ctx, txn, userID)...)
	candidates = append(candidates, l.vendorPatternSuggestions(ctx, txn, userID)...)

	unique := dedupeSuggestions(candidates)
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Confidence > unique[j].Confidence
	})

	if len(unique) > maxSuggestions {
		unique = unique[:maxSuggestions]
	}
	return unique, nil
}

// userHistorySuggestions converts the user's learned patterns, ordered by
// frequency, into suggestions.
func (l *Learner) userHistorySuggestions(ctx context.Context, userID string) []model.CategorySuggestion {
	patterns, err := l.userPatterns(ctx, userID)
	if err != nil {
		l.logger.Warn("failed to fetch user patterns", "user_id", userID, "error", err)
		return nil
	}

	suggestions := make([]model.CategorySuggestion, 0, len(patterns))
	for _, pattern := range patterns {
		suggestions = append(suggestions, model.CategorySuggestion{
			Category:    pattern.Category,
			Subcategory: pattern.Subcategory,
			Confidence:  pattern.Confidence,
			Reasoning:   fmt.Sprintf("Based on %d previous matches", pattern.Frequency),
			BasedOn:     model.BasisUserHistory,
		})
	}
	return suggestions
}

// similarUserSuggestions aggregates other users' spending in the same
// amount bucket, summing frequency per category.
func (l *Learner) similarUserSuggestions(ctx context.Context, txn model.Transaction, userID string) []model.CategorySuggestion {
	rangeMin, _ := model.AmountBucket(txn.Amount)

	patterns, err := l.store.GetSimilarUserPatterns(ctx, userID, rangeMin, similarUserLimit)
	if err != nil {
		l.logger.Warn("failed to fetch similar user patterns", "user_id", userID, "error", err)
		return nil
	}

	totals := make(map[string]int)
	var order []string
	for _, p := range patterns {
		if _, seen := totals[p.Category]; !seen {
			order = append(order, p.Category)
		}
		totals[p.Category] += p.Frequency
	}

	suggestions := make([]model.CategorySuggestion, 0, len(order))
	for _, category := range order {
		suggestions = append(suggestions, model.CategorySuggestion{
			Category:   category,
			Confidence: similarUserConfidence(totals[category]),
			Reasoning:  "Based on similar users' spending patterns",
			BasedOn:    model.BasisSimilarUsers,
		})
	}
	return suggestions
}

// spendingPatternSuggestions reads the user's own spending aggregates for
// the transaction's amount bucket.
func (l *Learner) spendingPatternSuggestions(ctx context.Context, txn model.Transaction, userID string) []model.CategorySuggestion {
	rangeMin, rangeMax := model.AmountBucket(txn.Amount)

	patterns, err := l.store.GetSpendingPatterns(ctx, userID, rangeMin, spendingFetchLimit)
	if err != nil {
		l.logger.Warn("failed to fetch spending patterns", "user_id", userID, "error", err)
		return nil
	}

	suggestions := make([]model.CategorySuggestion, 0, len(patterns))
	for _, p := range patterns {
		suggestions = append(suggestions, model.CategorySuggestion{
			Category:   p.Category,
			Confidence: spendingSuggestionConfidence(p.Frequency),
			Reasoning:  fmt.Sprintf("Common category for $%.0f-%.0f range", rangeMin, rangeMax),
			BasedOn:    model.BasisSpendingPattern,
		})
	}
	return suggestions
}

// vendorPatternSuggestions matches the vendor text (or description when no
// vendor is present) against the user's learned rule keywords.
func (l *Learner) vendorPatternSuggestions(ctx context.Context, txn model.Transaction, userID string) []model.CategorySuggestion {
	vendor := txn.Vendor
	if vendor == "" {
		vendor = txn.Description
	}
	if vendor == "" {
		return nil
	}

	rules, err := l.store.GetVendorRules(ctx, userID, vendor, vendorRuleLimit)
	if err != nil {
		l.logger.Warn("failed to fetch vendor rules", "user_id", userID, "error", err)
		return nil
	}

	suggestions := make([]model.CategorySuggestion, 0, len(rules))
	for _, rule := range rules {
		suggestions = append(suggestions, model.CategorySuggestion{
			Category:    rule.Category,
			Subcategory: rule.Subcategory,
			Confidence:  vendorMatchConfidence(rule.MatchCount),
			Reasoning:   fmt.Sprintf("Based on %d previous matches for similar vendors", rule.MatchCount),
			BasedOn:     model.BasisVendorPattern,
		})
	}
	return suggestions
}

// dedupeSuggestions keeps the first candidate for each (category,
// subcategory) pair, preserving input order.
func dedupeSuggestions(suggestions []model.CategorySuggestion) []model.CategorySuggestion {
	seen := make(map[string]bool, len(suggestions))
	unique := make([]model.CategorySuggestion, 0, len(suggestions))
	for _, s := range suggestions {
		key := strings.ToLower(s.Category) + "|" + strings.ToLower(s.Subcategory)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, s)
	}
	return unique
}

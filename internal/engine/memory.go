package engine

import (
	"context"
	"fmt"

	"github.com/coinsort/coinsort/internal/model"
)

// classifyByMemory looks up keyword associations learned from the user's
// own corrections, weighted by historical match frequency.
func (e *Engine) classifyByMemory(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) model.CategorizationResult {
	if prefs.UserID == "" {
		return zeroResult(model.SourceUserMemory, "No user ID")
	}

	matches, err := e.store.GetRulesByKeyword(ctx, prefs.UserID, txn.Description, txn.Vendor, memoryMatchLimit)
	if err != nil {
		e.logger.Warn("memory lookup failed", "user_id", prefs.UserID, "error", err)
		return zeroResult(model.SourceUserMemory, "Error accessing memory")
	}

	if len(matches) == 0 {
		return zeroResult(model.SourceUserMemory, "No memory matches")
	}

	best := matches[0]

	var alternatives []model.Alternative
	for _, m := range matches[1:min(len(matches), 3)] {
		alternatives = append(alternatives, model.Alternative{
			Category:    m.Category,
			Subcategory: m.Subcategory,
			Confidence:  memoryAlternativeConfidence(m.MatchCount),
		})
	}

	return model.CategorizationResult{
		Category:     best.Category,
		Subcategory:  best.Subcategory,
		Confidence:   memoryConfidence(best.MatchCount),
		Source:       model.SourceUserMemory,
		Reasoning:    fmt.Sprintf("Based on %d previous matches for %q", best.MatchCount, best.Keyword),
		Alternatives: alternatives,
	}
}

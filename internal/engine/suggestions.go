package engine

import (
	"strings"

	"github.com/coinsort/coinsort/internal/model"
)

// categorySuggestions produces the quick suggestion strings attached to a
// fallback result: the user's custom categories plus amount- and
// vendor-based heuristics, capped at five.
func (e *Engine) categorySuggestions(txn model.Transaction, prefs model.UserPreferences) []string {
	var suggestions []string
	seen := make(map[string]bool)

	add := func(category string) {
		if !seen[category] {
			seen[category] = true
			suggestions = append(suggestions, category)
		}
	}

	for _, category := range prefs.CustomCategories {
		add(category)
	}

	switch {
	case txn.Amount > 100:
		add("Major Purchase")
		add("Business Expense")
	case txn.Amount < 10:
		add("Small Purchase")
		add("Coffee & Snacks")
	}

	vendor := strings.ToLower(txn.Vendor)
	switch {
	case strings.Contains(vendor, "gas") || strings.Contains(vendor, "fuel"):
		add("Transportation")
	case strings.Contains(vendor, "grocery") || strings.Contains(vendor, "food"):
		add("Food & Dining")
	}

	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}
	return suggestions
}

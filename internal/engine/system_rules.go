package engine

import "github.com/coinsort/coinsort/internal/model"

// SystemRules returns a copy of the built-in rule set for display.
func SystemRules() []model.CategorizationRule {
	return systemRules()
}

// systemRules returns the built-in rule set, evaluated in order before any
// user rules. These are immutable and seeded at startup.
func systemRules() []model.CategorizationRule {
	return []model.CategorizationRule{
		// Food & Dining
		systemRule("food-1", `restaurant|cafe|diner|food|eat`, "Food & Dining", "Restaurants", 0.9, nil),
		systemRule("food-2", `grocery|supermarket|market|food`, "Food & Dining", "Groceries", 0.9, nil),
		systemRule("food-3", `coffee|starbucks|dunkin`, "Food & Dining", "Coffee", 0.9, nil),

		// Transportation
		systemRule("transport-1", `gas|fuel|petrol|shell|exxon|chevron`, "Transportation", "Gas", 0.9, nil),
		systemRule("transport-2", `uber|lyft|taxi|cab`, "Transportation", "Rideshare", 0.9, nil),
		systemRule("transport-3", `parking|garage`, "Transportation", "Parking", 0.8, nil),

		// Shopping
		systemRule("shopping-1", `amazon|walmart|target|store|shop`, "Shopping", "General", 0.8, nil),
		systemRule("shopping-2", `clothing|apparel|fashion`, "Shopping", "Clothing", 0.8, nil),

		// Utilities
		systemRule("utilities-1", `electric|power|energy`, "Utilities", "Electricity", 0.9, nil),
		systemRule("utilities-2", `water|sewer`, "Utilities", "Water", 0.9, nil),
		systemRule("utilities-3", `internet|cable|phone|telecom`, "Utilities", "Internet & Phone", 0.9, nil),

		// Healthcare
		systemRule("healthcare-1", `doctor|medical|hospital|clinic|pharmacy`, "Healthcare", "Medical", 0.9, nil),
		systemRule("healthcare-2", `cvs|walgreens|pharmacy`, "Healthcare", "Pharmacy", 0.9, nil),

		// Entertainment
		systemRule("entertainment-1", `movie|cinema|theater|netflix|spotify`, "Entertainment", "Media", 0.8, nil),
		systemRule("entertainment-2", `game|gaming|steam`, "Entertainment", "Gaming", 0.8, nil),

		// Income
		systemRule("income-1", `salary|payroll|deposit|income`, "Income", "Salary", 0.9,
			&model.RuleConditions{MinAmount: amountPtr(0)}),
		systemRule("income-2", `refund|return`, "Income", "Refunds", 0.8, nil),
	}
}

func systemRule(id, pattern, category, subcategory string, confidence float64, conditions *model.RuleConditions) model.CategorizationRule {
	return model.CategorizationRule{
		ID:          id,
		Pattern:     pattern,
		Kind:        model.PatternRegex,
		Category:    category,
		Subcategory: subcategory,
		Confidence:  confidence,
		Conditions:  conditions,
		Source:      model.SourceSystem,
	}
}

func amountPtr(v float64) *float64 {
	return &v
}

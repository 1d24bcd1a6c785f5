package model

// ResultSource identifies which classification layer produced a result.
type ResultSource string

// Result source constants.
const (
	SourceRuleBased  ResultSource = "rule-based"
	SourceSemanticAI ResultSource = "semantic-ai"
	SourceAdaptive   ResultSource = "adaptive-learning"
	SourceUserMemory ResultSource = "user-memory"
	SourceFallback   ResultSource = "fallback"
)

// UncategorizedCategory is the sentinel category for transactions no layer
// could classify.
const UncategorizedCategory = "Uncategorized"

// Alternative is a ranked alternative category for a result or suggestion.
type Alternative struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float64 `json:"confidence"`
}

// CategorizationResult is the outcome of classifying a single transaction.
// Ephemeral: computed per call and never persisted by the engine itself.
type CategorizationResult struct {
	Category      string        `json:"category"`
	Subcategory   string        `json:"subcategory,omitempty"`
	Reasoning     string        `json:"reasoning"`
	Source        ResultSource  `json:"source"`
	Alternatives  []Alternative `json:"alternatives,omitempty"`
	Suggestions   []string      `json:"suggestions,omitempty"`
	Confidence    float64       `json:"confidence"`
	FlagForReview bool          `json:"flag_for_review"`
}

// SuggestionBasis identifies the signal a category suggestion came from.
type SuggestionBasis string

// Suggestion basis constants.
const (
	BasisUserHistory     SuggestionBasis = "user-history"
	BasisSimilarUsers    SuggestionBasis = "similar-users"
	BasisSpendingPattern SuggestionBasis = "spending-pattern"
	BasisVendorPattern   SuggestionBasis = "vendor-pattern"
)

// CategorySuggestion is a ranked category candidate for interactive
// categorization assistance, distinct from the single best result.
type CategorySuggestion struct {
	Category     string          `json:"category"`
	Subcategory  string          `json:"subcategory,omitempty"`
	Reasoning    string          `json:"reasoning"`
	BasedOn      SuggestionBasis `json:"based_on"`
	Alternatives []Alternative   `json:"alternatives,omitempty"`
	Confidence   float64         `json:"confidence"`
}

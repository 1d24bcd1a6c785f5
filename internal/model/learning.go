package model

import "time"

// LearningFeedback is a single user correction: the engine said
// OriginalCategory, the user said CorrectedCategory.
type LearningFeedback struct {
	Timestamp            time.Time `json:"timestamp"`
	TransactionID        string    `json:"transaction_id"`
	Description          string    `json:"description"` // used to derive the keyword
	OriginalCategory     string    `json:"original_category"`
	CorrectedCategory    string    `json:"corrected_category"`
	CorrectedSubcategory string    `json:"corrected_subcategory,omitempty"`
	UserID               string    `json:"user_id"`
	Reasoning            string    `json:"reasoning,omitempty"`
	Amount               float64   `json:"amount"`
	Confidence           float64   `json:"confidence"`
}

// LearningPattern is a keyword-to-category association learned from
// corrections, keyed by (user, keyword, category) for idempotent upsert.
type LearningPattern struct {
	LastUpdated time.Time
	UserID      string
	Keyword     string
	Category    string
	Subcategory string
	Source      RuleSource
	Confidence  float64
	Frequency   int
}

// UserPreference is a persisted per-category weight for a user,
// reinforced by corrections.
type UserPreference struct {
	LastUpdated time.Time
	UserID      string
	Category    string
	CustomRules []string
	Exceptions  []string
	Weight      float64
}

// Correction is one entry in the correction history, used to derive metrics.
type Correction struct {
	CreatedAt            time.Time
	ID                   string
	UserID               string
	TransactionID        string
	OriginalCategory     string
	CorrectedCategory    string
	CorrectedSubcategory string
	Reasoning            string
	Confidence           float64
}

// SpendingPattern is an aggregate of how often a user spends in a given
// category within a $50-wide amount bucket.
type SpendingPattern struct {
	LastUpdated time.Time
	UserID      string
	Category    string
	RangeMin    float64
	RangeMax    float64
	Frequency   int
}

// LearningMetrics summarizes how the learning system is performing for a
// user. Cached per user; invalidated on every new correction.
type LearningMetrics struct {
	LastUpdated         time.Time `json:"last_updated"`
	TotalCorrections    int       `json:"total_corrections"`
	CategoriesLearned   int       `json:"categories_learned"`
	PatternsRecognized  int       `json:"patterns_recognized"`
	AccuracyImprovement float64   `json:"accuracy_improvement"`
	UserSatisfaction    float64   `json:"user_satisfaction"`
}

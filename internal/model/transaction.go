// Package model defines the core domain models used throughout the application.
package model

import "time"

// TransactionType indicates the direction of money movement.
type TransactionType string

// Transaction type constants.
const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

// Transaction represents a single financial transaction to categorize.
// It is an immutable input owned by the caller; the engine never mutates it.
type Transaction struct {
	Date        *time.Time
	Metadata    map[string]any // opaque bag, passed through unmodified
	ID          string
	Description string // raw transaction description (required)
	Vendor      string
	Type        TransactionType
	Amount      float64
}

// Goal tracks progress toward a per-category spending target.
type Goal struct {
	Category      string
	TargetAmount  float64
	CurrentAmount float64
}

// UserPreferences carries per-call user context for classification.
// An empty UserID means anonymous, stateless classification.
type UserPreferences struct {
	SpendingPatterns map[string]float64
	UserID           string
	CustomCategories []string
	Goals            []Goal
}

// CategorizedTransaction is a previously classified transaction from the
// user's history, used for textual-similarity lookups.
type CategorizedTransaction struct {
	Date        *time.Time
	ID          string
	UserID      string
	Description string
	Vendor      string
	Category    string
	Subcategory string
	Amount      float64
}

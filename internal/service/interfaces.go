// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

// Store defines the contract for the persistence layer: five logical
// collections (rules, learning patterns, user preferences, correction
// history, spending-pattern aggregates) plus the user's categorized
// transaction history. All queries are scoped by user id; upserts are
// keyed by the composite natural keys of the domain model and must be
// idempotent under concurrent writers (last-write-wins is acceptable).
type Store interface {
	// Rule operations. GetUserRules returns user-authored rules before
	// learned rules, then by descending match count.
	GetUserRules(ctx context.Context, userID string) ([]model.CategorizationRule, error)
	GetRulesByKeyword(ctx context.Context, userID, description, vendor string, limit int) ([]model.CategorizationRule, error)
	GetVendorRules(ctx context.Context, userID, vendor string, limit int) ([]model.CategorizationRule, error)
	GetLearnedRules(ctx context.Context, userID string) ([]model.CategorizationRule, error)
	CreateUserRule(ctx context.Context, rule *model.CategorizationRule) error
	// UpsertLearnedRule creates the (user, keyword, category) rule or
	// increments its match count by exactly one.
	UpsertLearnedRule(ctx context.Context, rule *model.CategorizationRule) error

	// Learning pattern operations, keyed by (user, keyword, category).
	GetLearningPatterns(ctx context.Context, userID string, limit int) ([]model.LearningPattern, error)
	UpsertLearningPattern(ctx context.Context, pattern *model.LearningPattern) error

	// User preference operations, keyed by (user, category).
	GetUserPreference(ctx context.Context, userID, category string) (*model.UserPreference, error)
	SaveUserPreference(ctx context.Context, pref *model.UserPreference) error

	// Correction history, ordered oldest first.
	RecordCorrection(ctx context.Context, correction *model.Correction) error
	GetCorrections(ctx context.Context, userID string) ([]model.Correction, error)

	// Spending-pattern aggregates, bucketed by $50 amount ranges.
	IncrementSpendingPattern(ctx context.Context, userID, category string, rangeMin, rangeMax float64) error
	GetSpendingPatterns(ctx context.Context, userID string, rangeMin float64, limit int) ([]model.SpendingPattern, error)
	GetSimilarUserPatterns(ctx context.Context, excludeUserID string, rangeMin float64, limit int) ([]model.SpendingPattern, error)

	// Categorized transaction history for similarity lookups.
	RecordTransaction(ctx context.Context, txn *model.CategorizedTransaction) error
	GetSimilarTransactions(ctx context.Context, userID, token string, limit int) ([]model.CategorizedTransaction, error)

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for transient failures.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

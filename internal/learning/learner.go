// Package learning ingests user corrections and maintains the learned
// rules, patterns, preferences, and metrics the classification engine
// reads on subsequent calls.
package learning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coinsort/coinsort/internal/model"
	"github.com/coinsort/coinsort/internal/service"
)

// Preference weight bookkeeping: created at initialWeight on the first
// reinforcing correction, then incremented per correction up to the cap.
const (
	initialPreferenceWeight = 0.7
	preferenceWeightStep    = 0.1
	maxPreferenceWeight     = 1.0
)

// bulkCorrectionConfidence is assumed for bulk corrections that carry none.
const bulkCorrectionConfidence = 0.8

// Invalidator is notified after every write for a user so sibling caches
// (the engine's rule cache) never serve stale state.
type Invalidator interface {
	InvalidateUser(userID string)
}

// Learner processes correction feedback and updates the persistent store.
type Learner struct {
	store        service.Store
	cache        *userCache
	logger       *slog.Logger
	invalidators []Invalidator
	batchSize    int
	batchPause   time.Duration
}

// Config holds configuration options for the learner.
type Config struct {
	BatchSize  int
	BatchPause time.Duration
	CacheTTL   time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize:  50,
		BatchPause: 100 * time.Millisecond,
		CacheTTL:   15 * time.Minute,
	}
}

// New creates a learner with default configuration.
func New(store service.Store, logger *slog.Logger, invalidators ...Invalidator) *Learner {
	return NewWithConfig(store, logger, DefaultConfig(), invalidators...)
}

// NewWithConfig creates a learner with custom configuration.
func NewWithConfig(store service.Store, logger *slog.Logger, config Config, invalidators ...Invalidator) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	return &Learner{
		store:        store,
		cache:        newUserCache(config.CacheTTL),
		logger:       logger,
		invalidators: invalidators,
		batchSize:    config.BatchSize,
		batchPause:   config.BatchPause,
	}
}

// ProcessFeedback ingests a single correction. The learned-rule upsert is
// the safety-critical write and its failure is surfaced; the remaining
// updates are best effort and logged. Replaying the same correction is
// idempotent per key: each call increments counts by exactly one.
func (l *Learner) ProcessFeedback(ctx context.Context, feedback model.LearningFeedback) error {
	if feedback.UserID == "" {
		return fmt.Errorf("feedback user id must not be empty")
	}
	if feedback.CorrectedCategory == "" {
		return fmt.Errorf("corrected category must not be empty")
	}

	keyword := model.ExtractKeyword(feedback.Description)
	if keyword == "" {
		// Descriptions made of short words produce no keyword; fall back
		// to the whole description so the correction is still learnable.
		keyword = strings.ToLower(strings.TrimSpace(feedback.Description))
	}
	if keyword == "" {
		return fmt.Errorf("feedback description must not be empty")
	}

	timestamp := feedback.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	rule := &model.CategorizationRule{
		UserID:      feedback.UserID,
		Keyword:     keyword,
		Category:    feedback.CorrectedCategory,
		Subcategory: feedback.CorrectedSubcategory,
		Confidence:  feedback.Confidence,
		Source:      model.SourceLearned,
	}
	if err := l.store.UpsertLearnedRule(ctx, rule); err != nil {
		return fmt.Errorf("failed to upsert learned rule: %w", err)
	}

	pattern := &model.LearningPattern{
		UserID:      feedback.UserID,
		Keyword:     keyword,
		Category:    feedback.CorrectedCategory,
		Subcategory: feedback.CorrectedSubcategory,
		Confidence:  feedback.Confidence,
		Source:      model.SourceLearned,
	}
	if err := l.store.UpsertLearningPattern(ctx, pattern); err != nil {
		l.logger.Warn("failed to upsert learning pattern",
			"user_id", feedback.UserID, "keyword", keyword, "error", err)
	}

	if err := l.reinforcePreference(ctx, feedback.UserID, feedback.CorrectedCategory); err != nil {
		l.logger.Warn("failed to update user preference",
			"user_id", feedback.UserID, "category", feedback.CorrectedCategory, "error", err)
	}

	correction := &model.Correction{
		UserID:               feedback.UserID,
		TransactionID:        feedback.TransactionID,
		OriginalCategory:     feedback.OriginalCategory,
		CorrectedCategory:    feedback.CorrectedCategory,
		CorrectedSubcategory: feedback.CorrectedSubcategory,
		Confidence:           feedback.Confidence,
		Reasoning:            feedback.Reasoning,
		CreatedAt:            timestamp,
	}
	if err := l.store.RecordCorrection(ctx, correction); err != nil {
		l.logger.Warn("failed to record correction",
			"user_id", feedback.UserID, "error", err)
	}

	rangeMin, rangeMax := model.AmountBucket(feedback.Amount)
	if err := l.store.IncrementSpendingPattern(ctx, feedback.UserID, feedback.CorrectedCategory, rangeMin, rangeMax); err != nil {
		l.logger.Warn("failed to update spending pattern",
			"user_id", feedback.UserID, "category", feedback.CorrectedCategory, "error", err)
	}

	l.invalidate(feedback.UserID)

	l.logger.Debug("processed feedback",
		"user_id", feedback.UserID,
		"keyword", keyword,
		"category", feedback.CorrectedCategory)

	return nil
}

// ProcessBulkFeedback applies corrections in fixed-size batches with a
// short pause between batches so the store is not overwhelmed. Items are
// independent: one failure does not stop the rest, and replaying the same
// items stays idempotent per key. The optional progress callback receives
// the number of items processed so far.
func (l *Learner) ProcessBulkFeedback(ctx context.Context, corrections []model.LearningFeedback, progress func(done int)) error {
	var failed int

	for start := 0; start < len(corrections); start += l.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+l.batchSize, len(corrections))
		for _, feedback := range corrections[start:end] {
			if feedback.Confidence == 0 {
				feedback.Confidence = bulkCorrectionConfidence
			}
			if err := l.ProcessFeedback(ctx, feedback); err != nil {
				failed++
				l.logger.Warn("bulk correction failed",
					"user_id", feedback.UserID,
					"transaction_id", feedback.TransactionID,
					"error", err)
			}
		}

		if progress != nil {
			progress(end)
		}

		if end < len(corrections) && l.batchPause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.batchPause):
			}
		}
	}

	l.logger.Info("processed bulk corrections",
		"total", len(corrections),
		"failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d corrections failed", failed, len(corrections))
	}
	return nil
}

// reinforcePreference bumps the (user, category) weight by one step, or
// creates it at the initial weight.
func (l *Learner) reinforcePreference(ctx context.Context, userID, category string) error {
	pref, err := l.store.GetUserPreference(ctx, userID, category)
	switch {
	case err == nil:
		pref.Weight = min(maxPreferenceWeight, pref.Weight+preferenceWeightStep)
	case isNotFound(err):
		pref = &model.UserPreference{
			UserID:   userID,
			Category: category,
			Weight:   initialPreferenceWeight,
		}
	default:
		return err
	}

	return l.store.SaveUserPreference(ctx, pref)
}

func (l *Learner) invalidate(userID string) {
	l.cache.invalidate(userID)
	for _, inv := range l.invalidators {
		inv.InvalidateUser(userID)
	}
}

// userPatterns returns the user's learned patterns, cached until the next
// correction for that user.
func (l *Learner) userPatterns(ctx context.Context, userID string) ([]model.LearningPattern, error) {
	if patterns, ok := l.cache.getPatterns(userID); ok {
		return patterns, nil
	}

	patterns, err := l.store.GetLearningPatterns(ctx, userID, patternFetchLimit)
	if err != nil {
		return nil, err
	}

	l.cache.setPatterns(userID, patterns)
	return patterns, nil
}

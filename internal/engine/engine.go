// Package engine implements the multi-layer classification cascade for
// categorizing transactions.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/coinsort/coinsort/internal/model"
	"github.com/coinsort/coinsort/internal/service"
)

// SemanticClassifier delegates free-text categorization to an external
// language-understanding service. Implementations must treat transport and
// parse failures as errors; the engine degrades them to zero confidence.
type SemanticClassifier interface {
	Classify(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) (model.CategorizationResult, error)
}

// Engine orchestrates the classification layers in priority order: rules,
// user memory, semantic analysis, adaptive patterns, then fallback.
type Engine struct {
	store           service.Store
	semantic        SemanticClassifier
	matcher         *ruleMatcher
	userRules       *ruleCache
	logger          *slog.Logger
	rules           []model.CategorizationRule
	semanticTimeout time.Duration
}

// Config holds configuration options for the engine.
type Config struct {
	SemanticTimeout time.Duration
	RuleCacheTTL    time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		SemanticTimeout: 15 * time.Second,
		RuleCacheTTL:    5 * time.Minute,
	}
}

// New creates a new engine with the given dependencies. The semantic
// classifier may be nil, in which case the semantic tier scores zero.
func New(store service.Store, semantic SemanticClassifier, logger *slog.Logger) *Engine {
	return NewWithConfig(store, semantic, logger, DefaultConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(store service.Store, semantic SemanticClassifier, logger *slog.Logger, config Config) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if config.SemanticTimeout <= 0 {
		config.SemanticTimeout = 15 * time.Second
	}
	return &Engine{
		store:           store,
		semantic:        semantic,
		matcher:         newRuleMatcher(),
		userRules:       newRuleCache(config.RuleCacheTTL),
		logger:          logger,
		rules:           systemRules(),
		semanticTimeout: config.SemanticTimeout,
	}
}

// InvalidateUser drops any cached rules for a user. Called synchronously by
// the learning system after every write for that user.
func (e *Engine) InvalidateUser(userID string) {
	e.userRules.invalidate(userID)
}

// Classify assigns a category to a transaction. It never returns an error:
// every failure path degrades to a lower tier, and an unexpected panic
// anywhere in the cascade converts to the terminal fallback result.
func (e *Engine) Classify(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) (result model.CategorizationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("classification panicked",
				"panic", r,
				"description", txn.Description)
			result = fallbackResult()
		}
	}()

	ruleResult := e.classifyByRule(ctx, txn, prefs)
	if ruleResult.Confidence >= ruleAcceptThreshold {
		return ruleResult
	}

	memoryResult := e.classifyByMemory(ctx, txn, prefs)
	if memoryResult.Confidence >= memoryAcceptThreshold {
		return memoryResult
	}

	semanticResult := e.classifyBySemantic(ctx, txn, prefs)
	if semanticResult.Confidence >= semanticAcceptThreshold {
		return semanticResult
	}

	adaptiveResult := e.classifyByAdaptive(ctx, txn, prefs)
	if adaptiveResult.Confidence >= adaptiveAcceptThreshold {
		return adaptiveResult
	}

	// No tier cleared its threshold: take the single best of the four,
	// ties broken by tier order.
	best := ruleResult
	for _, candidate := range []model.CategorizationResult{memoryResult, semanticResult, adaptiveResult} {
		if candidate.Confidence > best.Confidence {
			best = candidate
		}
	}

	best.FlagForReview = best.Confidence < reviewThreshold
	best.Suggestions = e.categorySuggestions(txn, prefs)

	e.logger.Debug("cascade fell through to best-of",
		"category", best.Category,
		"confidence", best.Confidence,
		"source", best.Source,
		"flag_for_review", best.FlagForReview)

	return best
}

// classifyByRule evaluates system rules first, then the user's stored
// rules, returning the first match.
func (e *Engine) classifyByRule(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) model.CategorizationResult {
	for _, rule := range e.rules {
		if e.matcher.matches(txn, rule) {
			return model.CategorizationResult{
				Category:     rule.Category,
				Subcategory:  rule.Subcategory,
				Confidence:   rule.Confidence,
				Source:       model.SourceRuleBased,
				Reasoning:    "Matched rule: " + rule.Pattern,
				Alternatives: staticAlternatives(),
			}
		}
	}

	if prefs.UserID != "" {
		for _, rule := range e.fetchUserRules(ctx, prefs.UserID) {
			if e.matcher.matches(txn, rule) {
				return model.CategorizationResult{
					Category:     rule.Category,
					Subcategory:  rule.Subcategory,
					Confidence:   rule.Confidence,
					Source:       model.SourceRuleBased,
					Reasoning:    "Matched user rule: " + rule.Pattern,
					Alternatives: staticAlternatives(),
				}
			}
		}
	}

	return model.CategorizationResult{
		Category:   model.UncategorizedCategory,
		Confidence: noMatchConfidence,
		Source:     model.SourceRuleBased,
		Reasoning:  "No rules matched",
	}
}

// fetchUserRules returns the user's stored rules, consulting the per-user
// cache first. Store failures degrade to an empty rule list.
func (e *Engine) fetchUserRules(ctx context.Context, userID string) []model.CategorizationRule {
	if rules, ok := e.userRules.get(userID); ok {
		return rules
	}

	rules, err := e.store.GetUserRules(ctx, userID)
	if err != nil {
		e.logger.Warn("failed to fetch user rules", "user_id", userID, "error", err)
		return nil
	}

	e.userRules.set(userID, rules)
	return rules
}

// zeroResult is the shape every layer returns when it has nothing to say.
func zeroResult(source model.ResultSource, reasoning string) model.CategorizationResult {
	return model.CategorizationResult{
		Category:  model.UncategorizedCategory,
		Source:    source,
		Reasoning: reasoning,
	}
}

// staticAlternatives mirrors the baseline alternative list attached to
// rule-based results.
func staticAlternatives() []model.Alternative {
	return []model.Alternative{
		{Category: model.UncategorizedCategory, Confidence: 0.1},
		{Category: "Other", Confidence: 0.2},
	}
}

// fallbackResult is the terminal result when the cascade itself fails.
func fallbackResult() model.CategorizationResult {
	return model.CategorizationResult{
		Category:      model.UncategorizedCategory,
		Confidence:    noMatchConfidence,
		Source:        model.SourceFallback,
		Reasoning:     "All categorization methods failed",
		FlagForReview: true,
		Suggestions:   []string{"Other", "Business Expense", "Personal"},
	}
}

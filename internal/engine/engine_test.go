package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/coinsort/coinsort/internal/model"
)

func newTestEngine(store *mockStore, semantic SemanticClassifier) *Engine {
	return New(store, semantic, nil)
}

func TestClassifySystemRules(t *testing.T) {
	tests := []struct {
		name            string
		description     string
		amount          float64
		wantCategory    string
		wantSubcategory string
		wantConfidence  float64
	}{
		{
			name:            "coffee shop",
			description:     "STARBUCKS COFFEE #1234",
			amount:          4.50,
			wantCategory:    "Food & Dining",
			wantSubcategory: "Coffee",
			wantConfidence:  0.9,
		},
		{
			name:            "gas station",
			description:     "Shell Gas Station",
			amount:          42.10,
			wantCategory:    "Transportation",
			wantSubcategory: "Gas",
			wantConfidence:  0.9,
		},
		{
			name:            "rideshare",
			description:     "UBER TRIP 8842",
			amount:          18.30,
			wantCategory:    "Transportation",
			wantSubcategory: "Rideshare",
			wantConfidence:  0.9,
		},
		{
			name:            "payroll deposit",
			description:     "ACH PAYROLL DEPOSIT",
			amount:          2500,
			wantCategory:    "Income",
			wantSubcategory: "Salary",
			wantConfidence:  0.9,
		},
	}

	engine := newTestEngine(&mockStore{}, nil)
	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := model.Transaction{
				ID:          "txn-1",
				Description: tt.description,
				Amount:      tt.amount,
				Type:        model.TypeDebit,
			}

			result := engine.Classify(ctx, txn, model.UserPreferences{})

			if result.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", result.Category, tt.wantCategory)
			}
			if result.Subcategory != tt.wantSubcategory {
				t.Errorf("Subcategory = %q, want %q", result.Subcategory, tt.wantSubcategory)
			}
			if result.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", result.Confidence, tt.wantConfidence)
			}
			if result.Source != model.SourceRuleBased {
				t.Errorf("Source = %q, want rule-based", result.Source)
			}
			if result.FlagForReview {
				t.Error("High-confidence rule match should not be flagged")
			}
		})
	}
}

func TestClassifyMemoryTier(t *testing.T) {
	// No system rule matches; a learned keyword with five corrections
	// scores min(0.95, 0.6+5*0.05) = 0.85 and clears the memory tier.
	store := &mockStore{
		getRulesByKeywordFunc: func(_ context.Context, _, _, _ string, _ int) ([]model.CategorizationRule, error) {
			return []model.CategorizationRule{
				{
					Keyword:     "acme widgets",
					Category:    "Business Expense",
					Subcategory: "Supplies",
					Source:      model.SourceLearned,
					MatchCount:  5,
				},
				{
					Keyword:    "acme widgets",
					Category:   "Shopping",
					Source:     model.SourceLearned,
					MatchCount: 2,
				},
			}, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ACME WIDGETS INV 42", Amount: 75}
	prefs := model.UserPreferences{UserID: "user1"}

	result := engine.Classify(context.Background(), txn, prefs)

	if result.Source != model.SourceUserMemory {
		t.Fatalf("Source = %q, want user-memory", result.Source)
	}
	if result.Category != "Business Expense" {
		t.Errorf("Category = %q, want Business Expense", result.Category)
	}
	if result.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want 0.85", result.Confidence)
	}
	if len(result.Alternatives) != 1 || result.Alternatives[0].Category != "Shopping" {
		t.Errorf("Alternatives = %+v, want the runner-up memory match", result.Alternatives)
	}
	if result.Reasoning != `Based on 5 previous matches for "acme widgets"` {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

func TestClassifyMemorySkippedWithoutUser(t *testing.T) {
	called := false
	store := &mockStore{
		getRulesByKeywordFunc: func(_ context.Context, _, _, _ string, _ int) ([]model.CategorizationRule, error) {
			called = true
			return nil, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ACME WIDGETS", Amount: 75}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{})

	if called {
		t.Error("Memory tier should not query the store without a user ID")
	}
	if result.Category != model.UncategorizedCategory {
		t.Errorf("Category = %q, want Uncategorized", result.Category)
	}
}

func TestClassifySemanticTier(t *testing.T) {
	semantic := &mockSemantic{
		classifyFunc: func(_ context.Context, _ model.Transaction, _ model.UserPreferences) (model.CategorizationResult, error) {
			return model.CategorizationResult{
				Category:   "Health & Fitness",
				Confidence: 0.75,
				Reasoning:  "Pharmacy purchase",
			}, nil
		},
	}

	engine := newTestEngine(&mockStore{}, semantic)
	txn := model.Transaction{Description: "RITEWAY PHCY 993", Amount: 12.99}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	if result.Source != model.SourceSemanticAI {
		t.Fatalf("Source = %q, want semantic-ai", result.Source)
	}
	if result.Category != "Health & Fitness" {
		t.Errorf("Category = %q, want Health & Fitness", result.Category)
	}
	if result.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", result.Confidence)
	}
}

func TestClassifySemanticFailureFallsThrough(t *testing.T) {
	semantic := &mockSemantic{
		classifyFunc: func(_ context.Context, _ model.Transaction, _ model.UserPreferences) (model.CategorizationResult, error) {
			return model.CategorizationResult{}, errors.New("api unavailable")
		},
	}
	store := &mockStore{
		getSimilarTxnsFunc: func(_ context.Context, _, _ string, _ int) ([]model.CategorizedTransaction, error) {
			return []model.CategorizedTransaction{
				{Category: "Shopping", Description: "riteway store"},
				{Category: "Shopping", Description: "riteway outlet"},
				{Category: "Shopping", Description: "riteway online"},
			}, nil
		},
	}

	engine := newTestEngine(store, semantic)
	txn := model.Transaction{Description: "RITEWAY 993", Amount: 12.99}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	// Adaptive similarity: min(0.8, 0.4+3*0.1) = 0.7, above its threshold.
	if result.Source != model.SourceAdaptive {
		t.Fatalf("Source = %q, want adaptive-learning", result.Source)
	}
	if result.Category != "Shopping" {
		t.Errorf("Category = %q, want Shopping", result.Category)
	}
	if math.Abs(result.Confidence-0.7) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.7", result.Confidence)
	}
}

func TestClassifyBestOfFallback(t *testing.T) {
	// Memory has one weak match (0.6+1*0.05 = 0.65), below its own
	// threshold but the best of the four tiers. It wins the fallback
	// and is not flagged (0.65 >= 0.6).
	store := &mockStore{
		getRulesByKeywordFunc: func(_ context.Context, _, _, _ string, _ int) ([]model.CategorizationRule, error) {
			return []model.CategorizationRule{
				{Keyword: "mystery vendor", Category: "Shopping", MatchCount: 1},
			}, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "MYSTERY VENDOR LLC", Amount: 33}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	if result.Source != model.SourceUserMemory {
		t.Fatalf("Source = %q, want user-memory", result.Source)
	}
	if result.Confidence != 0.65 {
		t.Errorf("Confidence = %v, want 0.65", result.Confidence)
	}
	if result.FlagForReview {
		t.Error("Result at 0.65 should not be flagged for review")
	}
}

func TestClassifyNothingMatchesFlagsForReview(t *testing.T) {
	engine := newTestEngine(&mockStore{}, nil)
	txn := model.Transaction{Description: "ZZWQX 0031", Amount: 33}
	prefs := model.UserPreferences{UserID: "user1", CustomCategories: []string{"Hobby"}}

	result := engine.Classify(context.Background(), txn, prefs)

	if result.Category != model.UncategorizedCategory {
		t.Errorf("Category = %q, want Uncategorized", result.Category)
	}
	if result.Confidence != 0.1 {
		t.Errorf("Confidence = %v, want 0.1", result.Confidence)
	}
	if !result.FlagForReview {
		t.Error("Low-confidence result must be flagged for review")
	}
	if len(result.Suggestions) == 0 || result.Suggestions[0] != "Hobby" {
		t.Errorf("Suggestions = %v, want custom categories first", result.Suggestions)
	}
}

func TestClassifyNeverRaises(t *testing.T) {
	// Every store call fails; the cascade still delivers a result.
	boom := errors.New("database on fire")
	store := &mockStore{
		getUserRulesFunc: func(_ context.Context, _ string) ([]model.CategorizationRule, error) {
			return nil, boom
		},
		getRulesByKeywordFunc: func(_ context.Context, _, _, _ string, _ int) ([]model.CategorizationRule, error) {
			return nil, boom
		},
		getSimilarTxnsFunc: func(_ context.Context, _, _ string, _ int) ([]model.CategorizedTransaction, error) {
			return nil, boom
		},
		getSpendingPatternsFunc: func(_ context.Context, _ string, _ float64, _ int) ([]model.SpendingPattern, error) {
			return nil, boom
		},
	}
	semantic := &mockSemantic{
		classifyFunc: func(_ context.Context, _ model.Transaction, _ model.UserPreferences) (model.CategorizationResult, error) {
			return model.CategorizationResult{}, errors.New("timeout")
		},
	}

	engine := newTestEngine(store, semantic)
	txn := model.Transaction{Description: "ANYTHING AT ALL", Amount: 50}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	if result.Category != model.UncategorizedCategory {
		t.Errorf("Category = %q, want Uncategorized", result.Category)
	}
	if !result.FlagForReview {
		t.Error("Degraded result must be flagged for review")
	}
}

func TestClassifyRecoversFromPanic(t *testing.T) {
	store := &mockStore{
		getRulesByKeywordFunc: func(_ context.Context, _, _, _ string, _ int) ([]model.CategorizationRule, error) {
			panic("unexpected")
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ZZWQX", Amount: 10}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	if result.Source != model.SourceFallback {
		t.Fatalf("Source = %q, want fallback", result.Source)
	}
	if result.Reasoning != "All categorization methods failed" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
	if !result.FlagForReview {
		t.Error("Fallback result must be flagged for review")
	}
}

func TestClassifyUserRuleAfterSystemRules(t *testing.T) {
	store := &mockStore{
		getUserRulesFunc: func(_ context.Context, _ string) ([]model.CategorizationRule, error) {
			return []model.CategorizationRule{
				{
					Pattern:    "zzwqx",
					Kind:       model.PatternLiteral,
					Category:   "Consulting Income",
					Source:     model.SourceUser,
					Confidence: 0.95,
				},
			}, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ZZWQX payout", Amount: 900}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	if result.Source != model.SourceRuleBased {
		t.Fatalf("Source = %q, want rule-based", result.Source)
	}
	if result.Category != "Consulting Income" {
		t.Errorf("Category = %q, want Consulting Income", result.Category)
	}
	if result.Reasoning != "Matched user rule: zzwqx" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

func TestInvalidateUserDropsCachedRules(t *testing.T) {
	calls := 0
	store := &mockStore{
		getUserRulesFunc: func(_ context.Context, _ string) ([]model.CategorizationRule, error) {
			calls++
			return nil, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ZZWQX", Amount: 10}
	prefs := model.UserPreferences{UserID: "user1"}
	ctx := context.Background()

	engine.Classify(ctx, txn, prefs)
	engine.Classify(ctx, txn, prefs)
	if calls != 1 {
		t.Fatalf("Store queried %d times, want 1 (cached)", calls)
	}

	engine.InvalidateUser("user1")
	engine.Classify(ctx, txn, prefs)
	if calls != 2 {
		t.Errorf("Store queried %d times after invalidation, want 2", calls)
	}
}

func TestClassifySpendingPatternSignal(t *testing.T) {
	store := &mockStore{
		getSpendingPatternsFunc: func(_ context.Context, _ string, rangeMin float64, _ int) ([]model.SpendingPattern, error) {
			if rangeMin != 100 {
				t.Errorf("rangeMin = %v, want 100", rangeMin)
			}
			return []model.SpendingPattern{
				{Category: "Shopping", RangeMin: 100, RangeMax: 149, Frequency: 7},
				{Category: "Food & Dining", RangeMin: 100, RangeMax: 149, Frequency: 2},
			}, nil
		},
	}

	engine := newTestEngine(store, nil)
	txn := model.Transaction{Description: "ZZWQX 11", Amount: 120}

	result := engine.Classify(context.Background(), txn, model.UserPreferences{UserID: "user1"})

	// Spending: min(0.8, 7/10) = 0.7, above the adaptive threshold.
	if result.Source != model.SourceAdaptive {
		t.Fatalf("Source = %q, want adaptive-learning", result.Source)
	}
	if result.Category != "Shopping" {
		t.Errorf("Category = %q, want Shopping", result.Category)
	}
	if math.Abs(result.Confidence-0.7) > 1e-9 {
		t.Errorf("Confidence = %v, want 0.7", result.Confidence)
	}
	if result.Reasoning != "Based on spending pattern analysis" {
		t.Errorf("Reasoning = %q", result.Reasoning)
	}
}

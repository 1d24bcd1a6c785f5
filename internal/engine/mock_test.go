package engine

import (
	"context"

	"github.com/coinsort/coinsort/internal/model"
	"github.com/coinsort/coinsort/internal/service"
)

// mockStore implements service.Store with overridable function fields.
// Unset fields behave as an empty store.
type mockStore struct {
	getUserRulesFunc           func(ctx context.Context, userID string) ([]model.CategorizationRule, error)
	getRulesByKeywordFunc      func(ctx context.Context, userID, description, vendor string, limit int) ([]model.CategorizationRule, error)
	getVendorRulesFunc         func(ctx context.Context, userID, vendor string, limit int) ([]model.CategorizationRule, error)
	getLearnedRulesFunc        func(ctx context.Context, userID string) ([]model.CategorizationRule, error)
	createUserRuleFunc         func(ctx context.Context, rule *model.CategorizationRule) error
	upsertLearnedRuleFunc      func(ctx context.Context, rule *model.CategorizationRule) error
	getLearningPatternsFunc    func(ctx context.Context, userID string, limit int) ([]model.LearningPattern, error)
	upsertLearningPatternFunc  func(ctx context.Context, pattern *model.LearningPattern) error
	getUserPreferenceFunc      func(ctx context.Context, userID, category string) (*model.UserPreference, error)
	saveUserPreferenceFunc     func(ctx context.Context, pref *model.UserPreference) error
	recordCorrectionFunc       func(ctx context.Context, correction *model.Correction) error
	getCorrectionsFunc         func(ctx context.Context, userID string) ([]model.Correction, error)
	incrementSpendingFunc      func(ctx context.Context, userID, category string, rangeMin, rangeMax float64) error
	getSpendingPatternsFunc    func(ctx context.Context, userID string, rangeMin float64, limit int) ([]model.SpendingPattern, error)
	getSimilarUserPatternsFunc func(ctx context.Context, excludeUserID string, rangeMin float64, limit int) ([]model.SpendingPattern, error)
	recordTransactionFunc      func(ctx context.Context, txn *model.CategorizedTransaction) error
	getSimilarTxnsFunc         func(ctx context.Context, userID, token string, limit int) ([]model.CategorizedTransaction, error)
}

var _ service.Store = (*mockStore)(nil)

func (m *mockStore) GetUserRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if m.getUserRulesFunc != nil {
		return m.getUserRulesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) GetRulesByKeyword(ctx context.Context, userID, description, vendor string, limit int) ([]model.CategorizationRule, error) {
	if m.getRulesByKeywordFunc != nil {
		return m.getRulesByKeywordFunc(ctx, userID, description, vendor, limit)
	}
	return nil, nil
}

func (m *mockStore) GetVendorRules(ctx context.Context, userID, vendor string, limit int) ([]model.CategorizationRule, error) {
	if m.getVendorRulesFunc != nil {
		return m.getVendorRulesFunc(ctx, userID, vendor, limit)
	}
	return nil, nil
}

func (m *mockStore) GetLearnedRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if m.getLearnedRulesFunc != nil {
		return m.getLearnedRulesFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) CreateUserRule(ctx context.Context, rule *model.CategorizationRule) error {
	if m.createUserRuleFunc != nil {
		return m.createUserRuleFunc(ctx, rule)
	}
	return nil
}

func (m *mockStore) UpsertLearnedRule(ctx context.Context, rule *model.CategorizationRule) error {
	if m.upsertLearnedRuleFunc != nil {
		return m.upsertLearnedRuleFunc(ctx, rule)
	}
	return nil
}

func (m *mockStore) GetLearningPatterns(ctx context.Context, userID string, limit int) ([]model.LearningPattern, error) {
	if m.getLearningPatternsFunc != nil {
		return m.getLearningPatternsFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockStore) UpsertLearningPattern(ctx context.Context, pattern *model.LearningPattern) error {
	if m.upsertLearningPatternFunc != nil {
		return m.upsertLearningPatternFunc(ctx, pattern)
	}
	return nil
}

func (m *mockStore) GetUserPreference(ctx context.Context, userID, category string) (*model.UserPreference, error) {
	if m.getUserPreferenceFunc != nil {
		return m.getUserPreferenceFunc(ctx, userID, category)
	}
	return nil, nil
}

func (m *mockStore) SaveUserPreference(ctx context.Context, pref *model.UserPreference) error {
	if m.saveUserPreferenceFunc != nil {
		return m.saveUserPreferenceFunc(ctx, pref)
	}
	return nil
}

func (m *mockStore) RecordCorrection(ctx context.Context, correction *model.Correction) error {
	if m.recordCorrectionFunc != nil {
		return m.recordCorrectionFunc(ctx, correction)
	}
	return nil
}

func (m *mockStore) GetCorrections(ctx context.Context, userID string) ([]model.Correction, error) {
	if m.getCorrectionsFunc != nil {
		return m.getCorrectionsFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockStore) IncrementSpendingPattern(ctx context.Context, userID, category string, rangeMin, rangeMax float64) error {
	if m.incrementSpendingFunc != nil {
		return m.incrementSpendingFunc(ctx, userID, category, rangeMin, rangeMax)
	}
	return nil
}

func (m *mockStore) GetSpendingPatterns(ctx context.Context, userID string, rangeMin float64, limit int) ([]model.SpendingPattern, error) {
	if m.getSpendingPatternsFunc != nil {
		return m.getSpendingPatternsFunc(ctx, userID, rangeMin, limit)
	}
	return nil, nil
}

func (m *mockStore) GetSimilarUserPatterns(ctx context.Context, excludeUserID string, rangeMin float64, limit int) ([]model.SpendingPattern, error) {
	if m.getSimilarUserPatternsFunc != nil {
		return m.getSimilarUserPatternsFunc(ctx, excludeUserID, rangeMin, limit)
	}
	return nil, nil
}

func (m *mockStore) RecordTransaction(ctx context.Context, txn *model.CategorizedTransaction) error {
	if m.recordTransactionFunc != nil {
		return m.recordTransactionFunc(ctx, txn)
	}
	return nil
}

func (m *mockStore) GetSimilarTransactions(ctx context.Context, userID, token string, limit int) ([]model.CategorizedTransaction, error) {
	if m.getSimilarTxnsFunc != nil {
		return m.getSimilarTxnsFunc(ctx, userID, token, limit)
	}
	return nil, nil
}

func (m *mockStore) Migrate(_ context.Context) error { return nil }

func (m *mockStore) Close() error { return nil }

// mockSemantic implements SemanticClassifier with a function field.
type mockSemantic struct {
	classifyFunc func(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) (model.CategorizationResult, error)
}

func (m *mockSemantic) Classify(ctx context.Context, txn model.Transaction, prefs model.UserPreferences) (model.CategorizationResult, error) {
	return m.classifyFunc(ctx, txn, prefs)
}

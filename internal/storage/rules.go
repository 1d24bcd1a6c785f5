package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coinsort/coinsort/internal/model"
)

const ruleColumns = `id, user_id, keyword, pattern, kind, category, subcategory,
	confidence, min_amount, max_amount, vendor_pattern, date_start, date_end,
	source, match_count, last_matched, created_at, updated_at`

// GetUserRules retrieves a user's rules, user-authored rules before learned
// ones, then by descending match count.
func (s *SQLiteStore) GetUserRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE user_id = ?
		ORDER BY CASE source WHEN 'user' THEN 0 ELSE 1 END, match_count DESC, id ASC
	`

	return s.queryRules(ctx, query, userID)
}

// GetRulesByKeyword retrieves rules whose keyword appears as a substring of
// the transaction description or vendor, ordered by descending match count.
func (s *SQLiteStore) GetRulesByKeyword(ctx context.Context, userID, description, vendor string, limit int) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE user_id = ?
		  AND keyword <> ''
		  AND (instr(?, keyword) > 0 OR instr(?, keyword) > 0)
		ORDER BY match_count DESC, id ASC
		LIMIT ?
	`

	return s.queryRules(ctx, query, userID, strings.ToLower(description), strings.ToLower(vendor), limit)
}

// GetVendorRules retrieves rules whose keyword appears as a substring of the
// given vendor text, ordered by descending match count.
func (s *SQLiteStore) GetVendorRules(ctx context.Context, userID, vendor string, limit int) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 3
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE user_id = ?
		  AND keyword <> ''
		  AND instr(?, keyword) > 0
		ORDER BY match_count DESC, id ASC
		LIMIT ?
	`

	return s.queryRules(ctx, query, userID, strings.ToLower(vendor), limit)
}

// GetLearnedRules retrieves all rules created from the user's corrections.
func (s *SQLiteStore) GetLearnedRules(ctx context.Context, userID string) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE user_id = ? AND source = 'learned'
		ORDER BY match_count DESC, id ASC
	`

	return s.queryRules(ctx, query, userID)
}

// CreateUserRule stores an explicitly user-authored rule.
func (s *SQLiteStore) CreateUserRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.Source = model.SourceUser

	var minAmount, maxAmount *float64
	var vendorPattern sql.NullString
	var dateStart, dateEnd *time.Time
	if rule.Conditions != nil {
		minAmount = rule.Conditions.MinAmount
		maxAmount = rule.Conditions.MaxAmount
		if rule.Conditions.VendorPattern != "" {
			vendorPattern = sql.NullString{String: rule.Conditions.VendorPattern, Valid: true}
		}
		if rule.Conditions.DateRange != nil {
			dateStart = &rule.Conditions.DateRange.Start
			dateEnd = &rule.Conditions.DateRange.End
		}
	}

	query := `
		INSERT INTO rules (
			id, user_id, keyword, pattern, kind, category, subcategory,
			confidence, min_amount, max_amount, vendor_pattern, date_start,
			date_end, source, match_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)
	`

	_, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.UserID, rule.Keyword, rule.Pattern, string(rule.Kind),
		rule.Category, nullString(rule.Subcategory), rule.Confidence,
		minAmount, maxAmount, vendorPattern, dateStart, dateEnd,
		string(rule.Source),
	)
	if err != nil {
		return fmt.Errorf("failed to create user rule: %w", err)
	}

	return nil
}

// UpsertLearnedRule creates the learned rule keyed by (user, keyword,
// category) or increments its match count by exactly one. Replaying the
// same correction increments once per call, never multiplies.
func (s *SQLiteStore) UpsertLearnedRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := validateString(rule.Keyword, "keyword"); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO rules (
			id, user_id, keyword, pattern, kind, category, subcategory,
			confidence, source, match_count, last_matched
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'learned', 1, ?)
		ON CONFLICT(user_id, keyword, category) WHERE source = 'learned' DO UPDATE SET
			subcategory = excluded.subcategory,
			confidence = excluded.confidence,
			match_count = match_count + 1,
			last_matched = excluded.last_matched,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		rule.ID, rule.UserID, rule.Keyword, rule.Pattern, string(model.PatternLiteral),
		rule.Category, nullString(rule.Subcategory), rule.Confidence, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert learned rule: %w", err)
	}

	return nil
}

func (s *SQLiteStore) queryRules(ctx context.Context, query string, args ...any) ([]model.CategorizationRule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategorizationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

func scanRule(rows *sql.Rows) (model.CategorizationRule, error) {
	var rule model.CategorizationRule
	var subcategory, vendorPattern, kind, source sql.NullString
	var minAmount, maxAmount sql.NullFloat64
	var dateStart, dateEnd, lastMatched sql.NullTime

	err := rows.Scan(
		&rule.ID, &rule.UserID, &rule.Keyword, &rule.Pattern, &kind,
		&rule.Category, &subcategory, &rule.Confidence,
		&minAmount, &maxAmount, &vendorPattern, &dateStart, &dateEnd,
		&source, &rule.MatchCount, &lastMatched, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return rule, err
	}

	rule.Kind = model.PatternKind(kind.String)
	rule.Source = model.RuleSource(source.String)
	rule.Subcategory = subcategory.String
	if lastMatched.Valid {
		t := lastMatched.Time
		rule.LastMatched = &t
	}

	if minAmount.Valid || maxAmount.Valid || vendorPattern.Valid || dateStart.Valid {
		cond := &model.RuleConditions{VendorPattern: vendorPattern.String}
		if minAmount.Valid {
			v := minAmount.Float64
			cond.MinAmount = &v
		}
		if maxAmount.Valid {
			v := maxAmount.Float64
			cond.MaxAmount = &v
		}
		if dateStart.Valid && dateEnd.Valid {
			cond.DateRange = &model.DateRange{Start: dateStart.Time, End: dateEnd.Time}
		}
		rule.Conditions = cond
	}

	return rule, nil
}

func validateRule(rule *model.CategorizationRule) error {
	if rule == nil {
		return fmt.Errorf("rule must not be nil")
	}
	if err := validateString(rule.UserID, "rule user id"); err != nil {
		return err
	}
	if err := validateString(rule.Category, "rule category"); err != nil {
		return err
	}
	if rule.Confidence < 0 || rule.Confidence > 1 {
		return fmt.Errorf("rule confidence must be between 0 and 1, got %f", rule.Confidence)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

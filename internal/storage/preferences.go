package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coinsort/coinsort/internal/common"
	"github.com/coinsort/coinsort/internal/model"
)

// GetUserPreference retrieves the persisted preference for a (user,
// category) pair. Returns common.ErrNotFound when none exists.
func (s *SQLiteStore) GetUserPreference(ctx context.Context, userID, category string) (*model.UserPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}

	query := `
		SELECT user_id, category, weight, custom_rules, exceptions, last_updated
		FROM user_preferences
		WHERE user_id = ? AND category = ?
	`

	var pref model.UserPreference
	var customRules, exceptions string
	err := s.db.QueryRowContext(ctx, query, userID, category).Scan(
		&pref.UserID, &pref.Category, &pref.Weight,
		&customRules, &exceptions, &pref.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user preference: %w", err)
	}

	if err := json.Unmarshal([]byte(customRules), &pref.CustomRules); err != nil {
		return nil, fmt.Errorf("failed to decode custom rules: %w", err)
	}
	if err := json.Unmarshal([]byte(exceptions), &pref.Exceptions); err != nil {
		return nil, fmt.Errorf("failed to decode exceptions: %w", err)
	}

	return &pref, nil
}

// SaveUserPreference upserts the preference keyed by (user, category).
// Last write wins; no compare-and-swap is required.
func (s *SQLiteStore) SaveUserPreference(ctx context.Context, pref *model.UserPreference) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if pref == nil {
		return fmt.Errorf("preference must not be nil")
	}
	if err := validateString(pref.UserID, "preference user id"); err != nil {
		return err
	}
	if err := validateString(pref.Category, "preference category"); err != nil {
		return err
	}
	if pref.Weight < 0 || pref.Weight > 1 {
		return fmt.Errorf("preference weight must be between 0 and 1, got %f", pref.Weight)
	}

	customRules, err := json.Marshal(stringsOrEmpty(pref.CustomRules))
	if err != nil {
		return fmt.Errorf("failed to encode custom rules: %w", err)
	}
	exceptions, err := json.Marshal(stringsOrEmpty(pref.Exceptions))
	if err != nil {
		return fmt.Errorf("failed to encode exceptions: %w", err)
	}

	query := `
		INSERT INTO user_preferences (
			user_id, category, weight, custom_rules, exceptions, last_updated
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, category) DO UPDATE SET
			weight = excluded.weight,
			custom_rules = excluded.custom_rules,
			exceptions = excluded.exceptions,
			last_updated = excluded.last_updated
	`

	_, err = s.db.ExecContext(ctx, query,
		pref.UserID, pref.Category, pref.Weight,
		string(customRules), string(exceptions), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save user preference: %w", err)
	}

	return nil
}

func stringsOrEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

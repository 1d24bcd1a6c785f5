package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

// IncrementSpendingPattern bumps the frequency of the (user, category,
// bucket) aggregate, creating it at frequency one.
func (s *SQLiteStore) IncrementSpendingPattern(ctx context.Context, userID, category string, rangeMin, rangeMax float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	query := `
		INSERT INTO spending_patterns (
			user_id, category, range_min, range_max, frequency, last_updated
		) VALUES (?, ?, ?, ?, 1, ?)
		ON CONFLICT(user_id, category, range_min) DO UPDATE SET
			frequency = frequency + 1,
			last_updated = excluded.last_updated
	`

	_, err := s.db.ExecContext(ctx, query, userID, category, rangeMin, rangeMax, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to increment spending pattern: %w", err)
	}

	return nil
}

// GetSpendingPatterns retrieves a user's spending aggregates for one amount
// bucket, highest frequency first.
func (s *SQLiteStore) GetSpendingPatterns(ctx context.Context, userID string, rangeMin float64, limit int) ([]model.SpendingPattern, error) {
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
		SELECT user_id, category, range_min, range_max, frequency, last_updated
		FROM spending_patterns
		WHERE user_id = ? AND range_min = ?
		ORDER BY frequency DESC, category ASC
		LIMIT ?
	`

	return s.querySpendingPatterns(ctx, query, userID, rangeMin, limit)
}

// GetSimilarUserPatterns retrieves other users' aggregates for the same
// amount bucket, highest frequency first.
func (s *SQLiteStore) GetSimilarUserPatterns(ctx context.Context, excludeUserID string, rangeMin float64, limit int) ([]model.SpendingPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT user_id, category, range_min, range_max, frequency, last_updated
		FROM spending_patterns
		WHERE user_id <> ? AND range_min = ?
		ORDER BY frequency DESC, category ASC
		LIMIT ?
	`

	return s.querySpendingPatterns(ctx, query, excludeUserID, rangeMin, limit)
}

func (s *SQLiteStore) querySpendingPatterns(ctx context.Context, query string, args ...any) ([]model.SpendingPattern, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.SpendingPattern
	for rows.Next() {
		var p model.SpendingPattern
		if err := rows.Scan(&p.UserID, &p.Category, &p.RangeMin, &p.RangeMax,
			&p.Frequency, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan spending pattern: %w", err)
		}
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spending patterns: %w", err)
	}

	return patterns, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/coinsort/coinsort/internal/model"
)

// GetLearningPatterns retrieves a user's learned patterns ordered by
// descending frequency.
func (s *SQLiteStore) GetLearningPatterns(ctx context.Context, userID string, limit int) ([]model.LearningPattern, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT user_id, keyword, category, subcategory, confidence, frequency,
			source, last_updated
		FROM learning_patterns
		WHERE user_id = ?
		ORDER BY frequency DESC, keyword ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query learning patterns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var patterns []model.LearningPattern
	for rows.Next() {
		var p model.LearningPattern
		var subcategory, source sql.NullString
		if err := rows.Scan(&p.UserID, &p.Keyword, &p.Category, &subcategory,
			&p.Confidence, &p.Frequency, &source, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan learning pattern: %w", err)
		}
		p.Subcategory = subcategory.String
		p.Source = model.RuleSource(source.String)
		patterns = append(patterns, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learning patterns: %w", err)
	}

	return patterns, nil
}

// UpsertLearningPattern creates the pattern keyed by (user, keyword,
// category) or increments its frequency by exactly one.
func (s *SQLiteStore) UpsertLearningPattern(ctx context.Context, pattern *model.LearningPattern) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if pattern == nil {
		return fmt.Errorf("pattern must not be nil")
	}
	if err := validateString(pattern.UserID, "pattern user id"); err != nil {
		return err
	}
	if err := validateString(pattern.Keyword, "pattern keyword"); err != nil {
		return err
	}
	if err := validateString(pattern.Category, "pattern category"); err != nil {
		return err
	}

	query := `
		INSERT INTO learning_patterns (
			user_id, keyword, category, subcategory, confidence, frequency,
			source, last_updated
		) VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(user_id, keyword, category) DO UPDATE SET
			subcategory = excluded.subcategory,
			confidence = excluded.confidence,
			frequency = frequency + 1,
			last_updated = excluded.last_updated
	`

	_, err := s.db.ExecContext(ctx, query,
		pattern.UserID, pattern.Keyword, pattern.Category,
		nullString(pattern.Subcategory), pattern.Confidence,
		string(pattern.Source), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert learning pattern: %w", err)
	}

	return nil
}

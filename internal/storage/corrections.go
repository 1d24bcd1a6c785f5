package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coinsort/coinsort/internal/model"
)

// RecordCorrection appends a correction to the user's history.
func (s *SQLiteStore) RecordCorrection(ctx context.Context, correction *model.Correction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if correction == nil {
		return fmt.Errorf("correction must not be nil")
	}
	if err := validateString(correction.UserID, "correction user id"); err != nil {
		return err
	}
	if err := validateString(correction.CorrectedCategory, "corrected category"); err != nil {
		return err
	}

	if correction.ID == "" {
		correction.ID = uuid.NewString()
	}
	if correction.CreatedAt.IsZero() {
		correction.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO corrections (
			id, user_id, transaction_id, original_category, corrected_category,
			corrected_subcategory, confidence, reasoning, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		correction.ID, correction.UserID, correction.TransactionID,
		correction.OriginalCategory, correction.CorrectedCategory,
		nullString(correction.CorrectedSubcategory), correction.Confidence,
		nullString(correction.Reasoning), correction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record correction: %w", err)
	}

	return nil
}

// GetCorrections retrieves all corrections for a user, oldest first.
func (s *SQLiteStore) GetCorrections(ctx context.Context, userID string) ([]model.Correction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, transaction_id, original_category, corrected_category,
			corrected_subcategory, confidence, reasoning, created_at
		FROM corrections
		WHERE user_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query corrections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var corrections []model.Correction
	for rows.Next() {
		var c model.Correction
		var subcategory, reasoning sql.NullString
		if err := rows.Scan(&c.ID, &c.UserID, &c.TransactionID,
			&c.OriginalCategory, &c.CorrectedCategory, &subcategory,
			&c.Confidence, &reasoning, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan correction: %w", err)
		}
		c.CorrectedSubcategory = subcategory.String
		c.Reasoning = reasoning.String
		corrections = append(corrections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating corrections: %w", err)
	}

	return corrections, nil
}

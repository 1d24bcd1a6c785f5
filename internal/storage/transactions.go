package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/coinsort/coinsort/internal/model"
)

// RecordTransaction stores a categorized transaction in the user's history
// so later classifications can lean on textual similarity.
func (s *SQLiteStore) RecordTransaction(ctx context.Context, txn *model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if txn == nil {
		return fmt.Errorf("transaction must not be nil")
	}
	if err := validateString(txn.UserID, "transaction user id"); err != nil {
		return err
	}
	if err := validateString(txn.Description, "transaction description"); err != nil {
		return err
	}
	if err := validateString(txn.Category, "transaction category"); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}

	query := `
		INSERT INTO transactions (
			id, user_id, description, vendor, amount, category, subcategory, txn_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			subcategory = excluded.subcategory
	`

	_, err := s.db.ExecContext(ctx, query,
		txn.ID, txn.UserID, txn.Description, nullString(txn.Vendor),
		txn.Amount, txn.Category, nullString(txn.Subcategory), txn.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// GetSimilarTransactions retrieves categorized transactions whose
// description contains the given token, case-insensitively.
func (s *SQLiteStore) GetSimilarTransactions(ctx context.Context, userID, token string, limit int) ([]model.CategorizedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, description, vendor, amount, category, subcategory, txn_date
		FROM transactions
		WHERE user_id = ?
		  AND category <> ''
		  AND instr(lower(description), ?) > 0
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, strings.ToLower(token), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.CategorizedTransaction
	for rows.Next() {
		var txn model.CategorizedTransaction
		var vendor, subcategory sql.NullString
		var date sql.NullTime
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Description, &vendor,
			&txn.Amount, &txn.Category, &subcategory, &date); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Vendor = vendor.String
		txn.Subcategory = subcategory.String
		if date.Valid {
			t := date.Time
			txn.Date = &t
		}
		txns = append(txns, txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

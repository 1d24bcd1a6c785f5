package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS rules (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					keyword TEXT NOT NULL DEFAULT '',
					pattern TEXT NOT NULL DEFAULT '',
					kind TEXT NOT NULL DEFAULT 'literal',
					category TEXT NOT NULL,
					subcategory TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					min_amount REAL,
					max_amount REAL,
					vendor_pattern TEXT,
					date_start DATETIME,
					date_end DATETIME,
					source TEXT NOT NULL,
					match_count INTEGER NOT NULL DEFAULT 0,
					last_matched DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, keyword, category)
				)`,
				`CREATE INDEX idx_rules_user ON rules(user_id)`,

				`CREATE TABLE IF NOT EXISTS learning_patterns (
					user_id TEXT NOT NULL,
					keyword TEXT NOT NULL,
					category TEXT NOT NULL,
					subcategory TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					frequency INTEGER NOT NULL DEFAULT 0,
					source TEXT NOT NULL,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (user_id, keyword, category)
				)`,

				`CREATE TABLE IF NOT EXISTS user_preferences (
					user_id TEXT NOT NULL,
					category TEXT NOT NULL,
					weight REAL NOT NULL DEFAULT 0,
					custom_rules TEXT NOT NULL DEFAULT '[]',
					exceptions TEXT NOT NULL DEFAULT '[]',
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (user_id, category)
				)`,

				`CREATE TABLE IF NOT EXISTS corrections (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					original_category TEXT NOT NULL,
					corrected_category TEXT NOT NULL,
					corrected_subcategory TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					reasoning TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_corrections_user ON corrections(user_id, created_at)`,

				`CREATE TABLE IF NOT EXISTS spending_patterns (
					user_id TEXT NOT NULL,
					category TEXT NOT NULL,
					range_min REAL NOT NULL,
					range_max REAL NOT NULL,
					frequency INTEGER NOT NULL DEFAULT 0,
					last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (user_id, category, range_min)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add categorized transaction history for similarity lookups",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					description TEXT NOT NULL,
					vendor TEXT,
					amount REAL NOT NULL DEFAULT 0,
					category TEXT NOT NULL,
					subcategory TEXT,
					txn_date DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_user ON transactions(user_id)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index spending patterns by amount bucket for similar-user queries",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_spending_bucket ON spending_patterns(range_min, frequency)`)
			return err
		},
	},
	{
		Version:     4,
		Description: "Scope rule uniqueness to learned rules",
		Up: func(tx *sql.Tx) error {
			// The v1 table-level UNIQUE(user_id, keyword, category) also
			// constrained user-authored rules, which all carry keyword ''
			// and so were limited to one per category. Only the learned
			// upsert needs the uniqueness, so rebuild the table without
			// the constraint and move it to a partial index.
			queries := []string{
				`ALTER TABLE rules RENAME TO rules_v1`,
				`CREATE TABLE rules (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					keyword TEXT NOT NULL DEFAULT '',
					pattern TEXT NOT NULL DEFAULT '',
					kind TEXT NOT NULL DEFAULT 'literal',
					category TEXT NOT NULL,
					subcategory TEXT,
					confidence REAL NOT NULL DEFAULT 0,
					min_amount REAL,
					max_amount REAL,
					vendor_pattern TEXT,
					date_start DATETIME,
					date_end DATETIME,
					source TEXT NOT NULL,
					match_count INTEGER NOT NULL DEFAULT 0,
					last_matched DATETIME,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`INSERT INTO rules (
					id, user_id, keyword, pattern, kind, category, subcategory,
					confidence, min_amount, max_amount, vendor_pattern,
					date_start, date_end, source, match_count, last_matched,
					created_at, updated_at
				) SELECT
					id, user_id, keyword, pattern, kind, category, subcategory,
					confidence, min_amount, max_amount, vendor_pattern,
					date_start, date_end, source, match_count, last_matched,
					created_at, updated_at
				FROM rules_v1`,
				`DROP TABLE rules_v1`,
				`CREATE INDEX idx_rules_user ON rules(user_id)`,
				`CREATE UNIQUE INDEX idx_rules_learned_key
					ON rules(user_id, keyword, category)
					WHERE source = 'learned'`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies any pending schema migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var current int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}

		slog.Info("Applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
			migration.Version, migration.Description); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

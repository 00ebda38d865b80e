package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// SchemaVersion is the schema version this build expects.
const SchemaVersion = 2

type migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
					category TEXT NOT NULL,
					amount_cents INTEGER NOT NULL CHECK (amount_cents > 0),
					date TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					source TEXT NOT NULL DEFAULT 'manual',
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Index transactions by category",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_category ON transactions(user_id, category)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_user_type ON transactions(user_id, type)`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate applies every migration newer than the database's user_version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := m.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", m.Version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
		}

		log.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	var final int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&final); err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}
	if final != SchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", SchemaVersion, final)
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(context.Context, *sql.Tx) error
	Description string
	Version     int
}

// statements returns an Up func that runs queries in order.
func statements(queries ...string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: statements(
			`CREATE TABLE IF NOT EXISTS model_status (
				id INTEGER PRIMARY KEY,
				is_loaded INTEGER NOT NULL,
				model_path TEXT,
				provider TEXT,
				provider_config TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS category (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				type TEXT NOT NULL,
				user_id TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS "transaction" (
				id TEXT PRIMARY KEY,
				amount REAL NOT NULL,
				date INTEGER NOT NULL,
				description TEXT,
				item TEXT,
				category_id TEXT NOT NULL,
				type TEXT NOT NULL,
				user_id TEXT
			)`,
		),
	},
	{
		Version:     2,
		Description: "Add budget table",
		Up: statements(
			`CREATE TABLE IF NOT EXISTS budget (
				id TEXT PRIMARY KEY,
				category_id TEXT NOT NULL,
				amount REAL NOT NULL,
				period TEXT NOT NULL,
				user_id TEXT
			)`,
		),
	},
	{
		Version:     3,
		Description: "Add lookup indexes",
		Up: statements(
			`CREATE INDEX IF NOT EXISTS idx_transaction_date ON "transaction"(date)`,
			`CREATE INDEX IF NOT EXISTS idx_transaction_category ON "transaction"(category_id)`,
			`CREATE INDEX IF NOT EXISTS idx_category_name ON category(name)`,
			`CREATE INDEX IF NOT EXISTS idx_budget_category ON budget(category_id, period)`,
		),
	},
}

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the recorded schema version, each
// in its own transaction.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		slog.Info("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, final)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration %d: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(ctx, tx); err != nil {
		return fmt.Errorf("migration %d failed: %w", m.Version, err)
	}
	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to record schema version %d: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}

// Package testutil provides test databases seeded through the public storage API.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/penny/internal/model"
	"github.com/Veraticus/penny/internal/storage"
)

// Seed prepares a test database after migration.
type Seed func(ctx context.Context, store *storage.SQLiteStorage) error

// SetupTestDB creates a migrated SQLite database in a temp dir and applies seeds.
// The database is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupTestDB(t,
//		testutil.WithProvider("gemini", map[string]string{"apiKey": "k"}),
//		testutil.WithTransactions(testutil.Expense(12.5, "food")),
//	)
func SetupTestDB(t *testing.T, seeds ...Seed) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "penny.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, seed := range seeds {
		if err := seed(ctx, store); err != nil {
			t.Fatalf("failed to seed test database: %v", err)
		}
	}

	return store
}

// WithProvider records provider as the active provider with cfg.
func WithProvider(provider string, cfg map[string]string) Seed {
	return func(ctx context.Context, store *storage.SQLiteStorage) error {
		return store.SetModelStatus(ctx, provider, cfg, false, nil)
	}
}

// WithTransactions adds each input as a transaction dated now.
func WithTransactions(inputs ...model.TransactionInput) Seed {
	return func(ctx context.Context, store *storage.SQLiteStorage) error {
		for _, input := range inputs {
			if _, _, err := store.AddTransaction(ctx, input, nil); err != nil {
				return err
			}
		}
		return nil
	}
}

// Expense builds a debit input for category.
func Expense(amount float64, category string) model.TransactionInput {
	return model.TransactionInput{
		Amount:   amount,
		Category: category,
		Type:     model.TransactionTypeDebit,
	}
}

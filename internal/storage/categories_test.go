package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

func TestResolveCategoryIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first, err := store.ResolveCategory(ctx, "food", model.TransactionTypeDebit)
	if err != nil {
		t.Fatalf("ResolveCategory() failed: %v", err)
	}
	if first.Type != model.CategoryTypeExpense {
		t.Errorf("type = %q, want expense", first.Type)
	}

	for i := 0; i < 3; i++ {
		again, err := store.ResolveCategory(ctx, "food", model.TransactionTypeCredit)
		if err != nil {
			t.Fatalf("ResolveCategory() repeat failed: %v", err)
		}
		if again.ID != first.ID {
			t.Errorf("repeat %d returned id %s, want %s", i, again.ID, first.ID)
		}
	}

	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM category WHERE name = 'food'`).Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("found %d food categories, want 1", count)
	}
}

func TestResolveCategoryCaseSensitive(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	lower, err := store.ResolveCategory(ctx, "food", model.TransactionTypeDebit)
	if err != nil {
		t.Fatalf("ResolveCategory(food) failed: %v", err)
	}
	upper, err := store.ResolveCategory(ctx, "Food", model.TransactionTypeDebit)
	if err != nil {
		t.Fatalf("ResolveCategory(Food) failed: %v", err)
	}
	if lower.ID == upper.ID {
		t.Error("names differing in case resolved to the same category")
	}

	salary, err := store.ResolveCategory(ctx, "salary", model.TransactionTypeCredit)
	if err != nil {
		t.Fatalf("ResolveCategory(salary) failed: %v", err)
	}
	if salary.Type != model.CategoryTypeIncome {
		t.Errorf("salary type = %q, want income", salary.Type)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories() failed: %v", err)
	}
	if len(categories) != 3 {
		t.Errorf("got %d categories, want 3", len(categories))
	}
}

func TestGetCategoryByNameNotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetCategoryByName(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}

	_, err = store.GetCategoryByName(context.Background(), "")
	if !errors.Is(err, ErrEmptyString) {
		t.Errorf("error = %v, want ErrEmptyString", err)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

// GetCategories returns all categories ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, user_id FROM category ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns the first category with exactly this name.
// It returns common.ErrNotFound when there is none.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, user_id FROM category WHERE name = ? ORDER BY rowid LIMIT 1`, name)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: category %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory inserts a new category.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name string, categoryType model.CategoryType) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	cat := model.Category{
		ID:   uuid.NewString(),
		Name: name,
		Type: categoryType,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO category (id, name, type, user_id) VALUES (?, ?, ?, ?)`,
		cat.ID, cat.Name, string(cat.Type), cat.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("Created category", "name", name, "type", categoryType)
	return &cat, nil
}

// ResolveCategory returns the category named name, creating it with the type
// implied by txnType when absent. Matching is exact and case-sensitive.
func (s *SQLiteStorage) ResolveCategory(ctx context.Context, name string, txnType model.TransactionType) (*model.Category, error) {
	cat, err := s.GetCategoryByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return s.CreateCategory(ctx, name, model.CategoryTypeFor(txnType))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (model.Category, error) {
	var (
		cat     model.Category
		catType string
		userID  sql.NullString
	)
	if err := row.Scan(&cat.ID, &cat.Name, &catType, &userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cat, err
		}
		return cat, fmt.Errorf("failed to scan category: %w", err)
	}
	cat.Type = model.CategoryType(catType)
	cat.UserID = nullableString(userID)
	return cat, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

// SetBudget creates or replaces the budget for a category and period. The
// category is created as an expense category when it does not exist.
func (s *SQLiteStorage) SetBudget(ctx context.Context, categoryName string, amount decimal.Decimal, period model.BudgetPeriod) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if !period.Valid() {
		return nil, fmt.Errorf("%w: budget period %q", common.ErrValidation, period)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: budget amount must be positive", common.ErrValidation)
	}

	cat, err := s.ResolveCategory(ctx, categoryName, model.TransactionTypeDebit)
	if err != nil {
		return nil, err
	}

	budget := model.Budget{
		ID:         uuid.NewString(),
		CategoryID: cat.ID,
		Period:     period,
		Amount:     amount,
	}

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM budget WHERE category_id = ? AND period = ?`, cat.ID, string(period)).Scan(&existing)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("failed to query budget: %w", err)
	default:
		budget.ID = existing
	}

	value, _ := amount.Float64()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO budget (id, category_id, amount, period, user_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET amount = excluded.amount`,
		budget.ID, budget.CategoryID, value, string(budget.Period), budget.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}
	return &budget, nil
}

// ListBudgets returns every budget with its category name, ordered by name.
func (s *SQLiteStorage) ListBudgets(ctx context.Context) ([]model.BudgetLine, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.category_id, b.amount, b.period, b.user_id, COALESCE(c.name, '')
		FROM budget b
		LEFT JOIN category c ON c.id = b.category_id
		ORDER BY c.name, b.period`)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []model.BudgetLine
	for rows.Next() {
		var (
			line   model.BudgetLine
			amount float64
			period string
			userID sql.NullString
		)
		if err := rows.Scan(&line.ID, &line.CategoryID, &amount, &period, &userID, &line.CategoryName); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		line.Amount = decimal.NewFromFloat(amount)
		line.Period = model.BudgetPeriod(period)
		line.UserID = nullableString(userID)
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return lines, nil
}

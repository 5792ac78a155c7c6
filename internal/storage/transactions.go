package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/penny/internal/model"
)

// AddTransaction validates input, resolves its category and records it dated now.
// Category resolution and the insert are separate statements; a failure in
// between leaves a category that later inputs reuse by name.
func (s *SQLiteStorage) AddTransaction(ctx context.Context, input model.TransactionInput, userID *string) (*model.Transaction, *model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, nil, err
	}

	validated, err := ValidateTransactionInput(input)
	if err != nil {
		return nil, nil, err
	}

	cat, err := s.ResolveCategory(ctx, validated.Category, validated.Type)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve category: %w", err)
	}

	txn := model.Transaction{
		ID:          uuid.NewString(),
		Amount:      decimal.NewFromFloat(validated.Amount),
		Date:        time.UnixMilli(time.Now().UnixMilli()),
		Description: validated.Description,
		Item:        validated.Item,
		CategoryID:  cat.ID,
		Type:        validated.Type,
		UserID:      userID,
	}

	amount, _ := txn.Amount.Float64()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO "transaction" (id, amount, date, description, item, category_id, type, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, amount, txn.Date.UnixMilli(), txn.Description, txn.Item, txn.CategoryID, string(txn.Type), txn.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	slog.Info("Added transaction", "id", txn.ID, "amount", txn.Amount.String(), "category", cat.Name, "type", txn.Type)
	return &txn, cat, nil
}

// GetTransactions returns debit transactions, optionally limited to a date range,
// newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, dateRange *model.DateRange) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, amount, date, description, item, category_id, type, user_id
		FROM "transaction"
		WHERE type = 'debit'`
	var args []any

	if dateRange != nil {
		if dateRange.End.Before(dateRange.Start) {
			return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, dateRange.End, dateRange.Start)
		}
		query += ` AND date >= ? AND date <= ?`
		args = append(args, dateRange.Start.UnixMilli(), dateRange.End.UnixMilli())
	}
	query += ` ORDER BY date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// SpendingTotal sums debit amounts in the range.
func (s *SQLiteStorage) SpendingTotal(ctx context.Context, dateRange model.DateRange) (decimal.Decimal, error) {
	return s.spending(ctx, dateRange, "")
}

// CategorySpending sums debit amounts in the range for one category id.
func (s *SQLiteStorage) CategorySpending(ctx context.Context, categoryID string, dateRange model.DateRange) (decimal.Decimal, error) {
	if err := validateString(categoryID, "categoryID"); err != nil {
		return decimal.Zero, err
	}
	return s.spending(ctx, dateRange, categoryID)
}

func (s *SQLiteStorage) spending(ctx context.Context, dateRange model.DateRange, categoryID string) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}

	query := `SELECT COALESCE(SUM(amount), 0) FROM "transaction" WHERE type = 'debit' AND date >= ? AND date <= ?`
	args := []any{dateRange.Start.UnixMilli(), dateRange.End.UnixMilli()}
	if categoryID != "" {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}

	var total float64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum spending: %w", err)
	}
	return decimal.NewFromFloat(total).Round(2), nil
}

// GetCategorySummary returns debit totals per category name in the range.
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, dateRange model.DateRange) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, SUM(t.amount), COUNT(*)
		FROM "transaction" t
		JOIN category c ON c.id = t.category_id
		WHERE t.type = 'debit' AND t.date >= ? AND t.date <= ?
		GROUP BY c.name
		ORDER BY SUM(t.amount) DESC, c.name`,
		dateRange.Start.UnixMilli(), dateRange.End.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var total model.CategoryTotal
		if err := rows.Scan(&total.Category, &total.Total, &total.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		totals = append(totals, total)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}
	return totals, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		txn         model.Transaction
		amount      float64
		dateMillis  int64
		description sql.NullString
		item        sql.NullString
		txnType     string
		userID      sql.NullString
	)
	if err := row.Scan(&txn.ID, &amount, &dateMillis, &description, &item, &txn.CategoryID, &txnType, &userID); err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txn.Amount = decimal.NewFromFloat(amount)
	txn.Date = time.UnixMilli(dateMillis)
	txn.Description = nullableString(description)
	txn.Item = nullableString(item)
	txn.Type = model.TransactionType(txnType)
	txn.UserID = nullableString(userID)
	return txn, nil
}

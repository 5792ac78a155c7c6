package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/penny/internal/common"
)

// reportTables are the tables described to SQL-generating models.
var reportTables = []string{"category", "transaction", "budget"}

// DescribeSchema returns the CREATE statements of the reportable tables.
func (s *SQLiteStorage) DescribeSchema(ctx context.Context) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(reportTables)), ",")
	args := make([]any, len(reportTables))
	for i, name := range reportTables {
		args[i] = name
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name IN (`+placeholders+`) ORDER BY name`, args...)
	if err != nil {
		return "", fmt.Errorf("failed to read schema: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", fmt.Errorf("failed to scan schema: %w", err)
		}
		statements = append(statements, stmt+";")
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating schema: %w", err)
	}
	return strings.Join(statements, "\n"), nil
}

// RunQuery executes a generated read-only statement and returns its rows as
// column-keyed maps. The statement runs inside a transaction that is always
// rolled back. Failures wrap common.ErrQueryExecution.
func (s *SQLiteStorage) RunQuery(ctx context.Context, query string) ([]map[string]any, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if !isReadOnly(query) {
		return nil, fmt.Errorf("%w: only SELECT statements are allowed", common.ErrQueryExecution)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrQueryExecution, err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrQueryExecution, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrQueryExecution, err)
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrQueryExecution, err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrQueryExecution, err)
	}
	return results, nil
}

func isReadOnly(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "select", "with":
		return true
	}
	return false
}

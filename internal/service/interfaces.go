// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/penny/internal/model"
)

// TransactionStore records and lists transactions.
type TransactionStore interface {
	AddTransaction(ctx context.Context, input model.TransactionInput, userID *string) (*model.Transaction, *model.Category, error)
	GetTransactions(ctx context.Context, dateRange *model.DateRange) ([]model.Transaction, error)
}

// QueryRunner executes generated report queries.
type QueryRunner interface {
	DescribeSchema(ctx context.Context) (string, error)
	RunQuery(ctx context.Context, query string) ([]map[string]any, error)
}

// StatusStore persists the single model/provider status record.
type StatusStore interface {
	GetModelStatus(ctx context.Context) (model.ModelStatus, error)
	SetModelStatus(ctx context.Context, provider string, config map[string]string, isLoaded bool, modelPath *string) error
	DeleteModelStatus(ctx context.Context) error
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	TransactionStore
	QueryRunner
	StatusStore

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	ResolveCategory(ctx context.Context, name string, txnType model.TransactionType) (*model.Category, error)

	// Reporting
	SpendingTotal(ctx context.Context, dateRange model.DateRange) (decimal.Decimal, error)
	CategorySpending(ctx context.Context, categoryID string, dateRange model.DateRange) (decimal.Decimal, error)
	GetCategorySummary(ctx context.Context, dateRange model.DateRange) ([]model.CategoryTotal, error)

	// Budget operations
	SetBudget(ctx context.Context, categoryName string, amount decimal.Decimal, period model.BudgetPeriod) (*model.Budget, error)
	ListBudgets(ctx context.Context) ([]model.BudgetLine, error)

	// Database management
	Migrate(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

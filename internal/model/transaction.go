// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of money for a transaction.
type TransactionType string

const (
	// TransactionTypeCredit is money coming in.
	TransactionTypeCredit TransactionType = "credit"
	// TransactionTypeDebit is money going out.
	TransactionTypeDebit TransactionType = "debit"
)

// Transaction is a single recorded expense or income.
type Transaction struct {
	Date        time.Time
	Description *string
	Item        *string
	UserID      *string
	ID          string
	CategoryID  string
	Type        TransactionType
	Amount      decimal.Decimal
}

// TransactionInput is the shape a model must produce when extracting an expense
// from a chat message.
type TransactionInput struct {
	Description *string         `json:"description"`
	Item        *string         `json:"item"`
	Category    string          `json:"category" validate:"required,min=1"`
	Type        TransactionType `json:"type" validate:"omitempty,oneof=credit debit"`
	Amount      float64         `json:"amount" validate:"gt=0,gte=0.01"`
}

// CategoryTotal is a per-category aggregate produced by a spending report.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int     `json:"count,omitempty"`
}

// DataQuery is a structured filter a model derives from a reporting question.
type DataQuery struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Category  string          `json:"category,omitempty"`
	Type      TransactionType `json:"type,omitempty"`
}

package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the window a budget amount applies to.
type BudgetPeriod string

// Budget periods.
const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// Budget caps spending for a category over a period.
type Budget struct {
	UserID     *string
	ID         string
	CategoryID string
	Period     BudgetPeriod
	Amount     decimal.Decimal
}

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetPeriodWeekly, BudgetPeriodMonthly, BudgetPeriodYearly:
		return true
	}
	return false
}

// BudgetLine is a budget joined with its category name.
type BudgetLine struct {
	CategoryName string
	Budget
}

// Range returns the current budget window containing now.
func (p BudgetPeriod) Range(now time.Time) DateRange {
	switch p {
	case BudgetPeriodWeekly:
		return PeriodWeek.Range(now, 0)
	case BudgetPeriodYearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return DateRange{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Nanosecond)}
	default:
		return PeriodMonth.Range(now, 0)
	}
}

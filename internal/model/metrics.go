package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthTotals holds income and expense sums for one calendar month.
type MonthTotals struct {
	Month   int
	Year    int
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// CategoryTotal is one row of the expense breakdown.
type CategoryTotal struct {
	CategoryID string
	Name       string
	Color      string
	Icon       string
	Amount     decimal.Decimal
	Count      int
}

// TrendPoint holds one month of the trailing trend.
type TrendPoint struct {
	Label   string // "Jan 2025"
	Month   time.Month
	Year    int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// BudgetView pairs a budget with its derived status for rendering.
type BudgetView struct {
	Budget
	Status BudgetStatus
}

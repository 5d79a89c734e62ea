package model

import "github.com/shopspring/decimal"

// BudgetStatus is the alert level of a budget's consumption.
type BudgetStatus string

const (
	StatusOK       BudgetStatus = "ok"
	StatusWarning  BudgetStatus = "warning"
	StatusExceeded BudgetStatus = "exceeded"
)

// Budget caps spending in one category for one month. Spent, Remaining and
// Percentage are computed by the server per query.
type Budget struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"categoryId"`
	Amount     decimal.Decimal `json:"amount"`
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	UserID     string          `json:"userId"`
	Category   *Category       `json:"category,omitempty"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
}

// BudgetAlert is a read-only projection of a budget past a usage threshold.
type BudgetAlert struct {
	BudgetID      string          `json:"budgetId"`
	CategoryID    string          `json:"categoryId"`
	CategoryName  string          `json:"categoryName"`
	CategoryColor string          `json:"categoryColor"`
	CategoryIcon  string          `json:"categoryIcon"`
	BudgetAmount  decimal.Decimal `json:"budgetAmount"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	Percentage    decimal.Decimal `json:"percentage"`
	Status        BudgetStatus    `json:"status"`
}

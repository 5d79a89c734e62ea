package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Type            `json:"type"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	UserID      string          `json:"userId"`
	CategoryID  string          `json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// TransactionFilters narrows GET /transactions. Zero fields are omitted.
type TransactionFilters struct {
	Month      int
	Year       int
	Type       Type
	CategoryID string
}

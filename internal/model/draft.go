package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryDraft is the editable shape of a category.
type CategoryDraft struct {
	Name  string `json:"name" validate:"required,min=3,max=50"`
	Type  Type   `json:"type" validate:"category_type"`
	Color string `json:"color" validate:"hex_color"`
	Icon  string `json:"icon" validate:"required"`
}

// NewCategoryDraft returns a draft with the form defaults.
func NewCategoryDraft() CategoryDraft {
	return CategoryDraft{
		Type:  Expense,
		Color: DefaultCategoryColor,
		Icon:  DefaultCategoryIcon,
	}
}

// DraftFromCategory prefills an edit form.
func DraftFromCategory(c Category) CategoryDraft {
	return CategoryDraft{Name: c.Name, Type: c.Type, Color: c.Color, Icon: c.Icon}
}

// TransactionDraft is the editable shape of a transaction.
type TransactionDraft struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Type        Type            `json:"type" validate:"transaction_type"`
	Date        Date            `json:"date" validate:"required"`
	Description string          `json:"description" validate:"max=255"`
	CategoryID  string          `json:"categoryId" validate:"required"`
}

// NewTransactionDraft returns an expense dated today.
func NewTransactionDraft(now time.Time) TransactionDraft {
	return TransactionDraft{Type: Expense, Date: DateOf(now)}
}

// DraftFromTransaction prefills an edit form.
func DraftFromTransaction(t Transaction) TransactionDraft {
	return TransactionDraft{
		Amount:      t.Amount,
		Type:        t.Type,
		Date:        t.Date,
		Description: t.Description,
		CategoryID:  t.CategoryID,
	}
}

// BudgetDraft is the editable shape of a budget.
type BudgetDraft struct {
	CategoryID string          `json:"categoryId" validate:"required"`
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	Month      int             `json:"month" validate:"min=1,max=12"`
	Year       int             `json:"year" validate:"min=2000,max=9999"`
}

// NewBudgetDraft returns a draft for the month containing now.
func NewBudgetDraft(now time.Time) BudgetDraft {
	return BudgetDraft{Month: int(now.Month()), Year: now.Year()}
}

// DraftFromBudget prefills an edit form.
func DraftFromBudget(b Budget) BudgetDraft {
	return BudgetDraft{CategoryID: b.CategoryID, Amount: b.Amount, Month: b.Month, Year: b.Year}
}

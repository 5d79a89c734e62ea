package validate

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
)

func fieldMsg(t *testing.T, err error, field string) string {
	t.Helper()
	v, ok := apperr.AsValidation(err)
	require.True(t, ok, "want ValidationError, got %T: %v", err, err)
	msg, ok := v.Field(field)
	require.True(t, ok, "no error for field %q in %v", field, v.Fields)
	return msg
}

func TestCategory_NameTrimmedAndMinLength(t *testing.T) {
	d := model.NewCategoryDraft()
	d.Name = "   "
	assert.Equal(t, "is required", fieldMsg(t, Category(&d), "name"))

	d.Name = "  ab  "
	assert.Equal(t, "must be at least 3 characters", fieldMsg(t, Category(&d), "name"))

	d.Name = "  Rent  "
	require.NoError(t, Category(&d))
	assert.Equal(t, "Rent", d.Name)
}

func TestCategory_ColorAndType(t *testing.T) {
	d := model.NewCategoryDraft()
	d.Name = "Groceries"
	d.Color = "red"
	d.Type = "transfer"

	err := Category(&d)
	assert.Equal(t, "must be a hex color such as #FF6B6B", fieldMsg(t, err, "color"))
	assert.Equal(t, "must be income or expense", fieldMsg(t, err, "type"))
}

func TestTransaction_AmountMustBePositive(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, amt := range []string{"0", "-5", "0.00"} {
		d := model.NewTransactionDraft(now)
		d.CategoryID = "cat-1"
		d.Amount = decimal.RequireFromString(amt)
		assert.Equal(t, "must be greater than 0", fieldMsg(t, Transaction(&d), "amount"), amt)
	}

	d := model.NewTransactionDraft(now)
	d.CategoryID = "cat-1"
	d.Amount = decimal.RequireFromString("0.01")
	require.NoError(t, Transaction(&d))
}

func TestTransaction_RequiresCategoryAndDate(t *testing.T) {
	d := model.TransactionDraft{Type: model.Expense, Amount: decimal.NewFromInt(10)}
	err := Transaction(&d)
	assert.Equal(t, "is required", fieldMsg(t, err, "categoryId"))
	assert.Equal(t, "is required", fieldMsg(t, err, "date"))
}

func TestBudget_MonthRange(t *testing.T) {
	d := model.BudgetDraft{CategoryID: "c", Amount: decimal.NewFromInt(200), Month: 13, Year: 2025}
	assert.Equal(t, "must be at most 12", fieldMsg(t, Budget(&d), "month"))

	d.Month = 12
	require.NoError(t, Budget(&d))
}

func TestRegistration(t *testing.T) {
	r := model.Registration{Name: " Ana ", Email: "not-an-email", Password: "123"}
	err := Registration(&r)
	assert.Equal(t, "must be a valid email address", fieldMsg(t, err, "email"))
	assert.Equal(t, "must be at least 6 characters", fieldMsg(t, err, "password"))
	assert.Equal(t, "Ana", r.Name)
}

func TestTypeMatchesCategory(t *testing.T) {
	salary := model.Category{ID: "c1", Name: "Salary", Type: model.Income}
	d := model.TransactionDraft{Type: model.Expense, CategoryID: "c1"}

	err := TypeMatchesCategory(d, salary)
	require.Error(t, err)
	var v *apperr.ValidationError
	require.True(t, errors.As(err, &v))

	d.Type = model.Income
	assert.NoError(t, TypeMatchesCategory(d, salary))
}

package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
)

var uid = "u1"

var cats = []model.Category{
	{ID: "c-food", Name: "Food", Type: model.Expense, UserID: &uid},
	{ID: "c-salary", Name: "Salary", Type: model.Income},
	{ID: "c-gifts-in", Name: "Gifts", Type: model.Income, UserID: &uid},
	{ID: "c-gifts-out", Name: "Gifts", Type: model.Expense, UserID: &uid},
}

func TestParse(t *testing.T) {
	in := `date,type,amount,description,category
2025-01-05,expense,12.50,Lunch,food
2025-01-31,income,"$3,000.00",January pay,c-salary

2025-02-01,expense,20,Present,Gifts
`
	rows, rowErrs, err := Parse(strings.NewReader(in), cats)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "c-food", rows[0].Draft.CategoryID)
	assert.True(t, rows[0].Draft.Amount.Equal(decimal.RequireFromString("12.5")))

	assert.True(t, rows[1].Draft.Amount.Equal(decimal.NewFromInt(3000)))
	assert.Equal(t, model.Income, rows[1].Draft.Type)

	assert.Equal(t, "c-gifts-out", rows[2].Draft.CategoryID, "name resolves to the category of matching type")
	assert.Equal(t, 5, rows[2].Line)
}

func TestParseReportsBadRows(t *testing.T) {
	in := `category,amount,type,date
Food,-1,expense,2025-01-01
Food,5,expense,not-a-date
Salary,5,expense,2025-01-01
Nope,5,expense,2025-01-01
Food,5,expense,2025-01-02
`
	rows, rowErrs, err := Parse(strings.NewReader(in), cats)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 6, rows[0].Line)

	require.Len(t, rowErrs, 4)
	lines := []int{rowErrs[0].Line, rowErrs[1].Line, rowErrs[2].Line, rowErrs[3].Line}
	assert.Equal(t, []int{2, 3, 4, 5}, lines)
	assert.Contains(t, rowErrs[3].Error(), `unknown category "Nope"`)
}

func TestParseHeaderErrors(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""), cats)
	assert.Error(t, err)

	_, _, err = Parse(strings.NewReader("date,amount\n2025-01-01,5\n"), cats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type, category")
}

func TestWriteRoundTripsThroughParse(t *testing.T) {
	d, _ := model.ParseDate("2025-03-04")
	food := cats[0]
	txs := []model.Transaction{
		{Date: d, Type: model.Expense, Amount: decimal.RequireFromString("9.9"), Description: "Coffee, beans", CategoryID: food.ID, Category: &food},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, txs))
	assert.Equal(t, "date,type,amount,description,category\n2025-03-04,expense,9.90,\"Coffee, beans\",Food\n", buf.String())

	rows, rowErrs, err := Parse(&buf, cats)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee, beans", rows[0].Draft.Description)
}

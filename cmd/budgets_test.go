package cmd

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

func TestBudgetListRowShowsPercentageOnce(t *testing.T) {
	views := pipeline.BudgetViews([]model.Budget{{
		ID:         "b1",
		Amount:     decimal.NewFromInt(200),
		Spent:      decimal.RequireFromString("159.9"),
		Remaining:  decimal.RequireFromString("40.1"),
		Percentage: decimal.NewFromInt(80),
		Category:   &model.Category{Name: "Groceries", Color: "#FF6B6B", Type: model.Expense},
	}})
	require.Len(t, views, 1)

	row := budgetListRow(views[0])
	line := strings.Join(row, " ")
	assert.Equal(t, 1, strings.Count(line, "80%"))
	assert.Contains(t, row[5], "Warning", "badge agrees with the 80% bar")
}

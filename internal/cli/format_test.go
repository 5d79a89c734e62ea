package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/theirongolddev/tally/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"12.5", "$12.50"},
		{"1234.567", "$1,234.57"},
		{"1000000", "$1,000,000.00"},
		{"-3", "-$3.00"},
		{"-1234.5", "-$1,234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatSignedMoney(t *testing.T) {
	assert.Equal(t, "+$10.00", FormatSignedMoney(decimal.NewFromInt(10), model.Income))
	assert.Equal(t, "-$10.00", FormatSignedMoney(decimal.NewFromInt(10), model.Expense))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "90%", FormatPercent(decimal.NewFromInt(90)))
	assert.Equal(t, "80%", FormatPercent(decimal.RequireFromString("79.6")))
	assert.Equal(t, "150%", FormatPercent(decimal.NewFromInt(150)))
}

func TestFormatMonth(t *testing.T) {
	assert.Equal(t, "January 2025", FormatMonth(1, 2025))
	assert.Equal(t, "13/2025", FormatMonth(13, 2025))
}

func TestFormatDate(t *testing.T) {
	d, _ := model.ParseDate("2025-01-05")
	assert.Equal(t, "Jan 05, 2025", FormatDate(d))
	assert.Equal(t, "-", FormatDate(model.Date{}))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+$5.00", FormatDelta(decimal.NewFromInt(15), decimal.NewFromInt(10)))
	assert.Equal(t, "-$5.00", FormatDelta(decimal.NewFromInt(10), decimal.NewFromInt(15)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "hel…", Truncate("hello", 4))
	assert.Equal(t, "café…", Truncate("café crème", 5))
}

func TestRenderTableAlignsStyledCells(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{RenderSwatch("#FF0000") + " Food", "$1.00"},
			{"Rent", "$1,000.00"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	width := lipgloss.Width(lines[0])
	for _, l := range lines {
		assert.Equal(t, width, lipgloss.Width(l), "line %q", l)
	}
}

func TestRenderBudgetBarCapsAtFull(t *testing.T) {
	out := RenderBudgetBar(decimal.NewFromInt(250), 10)
	assert.Equal(t, 10, strings.Count(out, "█"))
	assert.Contains(t, out, "250%")

	out = RenderBudgetBar(decimal.Zero, 10)
	assert.Equal(t, 10, strings.Count(out, "░"))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "On track", StatusLabel(model.StatusOK))
	assert.Equal(t, "Warning", StatusLabel(model.StatusWarning))
	assert.Equal(t, "Exceeded", StatusLabel(model.StatusExceeded))
}

package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

func init() {
	// Background fill is only visible when styles emit ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestCardRowPadsShorterBudgetCard(t *testing.T) {
	theme.SetActive("gruvbox-dark")
	t.Cleanup(func() { theme.SetActive("flexoki-dark") })

	spent := MetricCard(Metric{Label: "Spent", Value: "$1,240.00", Delta: "82% used", Color: theme.Active.StatusColor(model.StatusWarning)}, 24)
	bars := []string{
		BudgetBar("Groceries", 0.82, model.StatusWarning, 10, 12, "$410 / $500"),
		BudgetBar("Rent", 1.0, model.StatusExceeded, 10, 12, "$1,200 / $1,200"),
		BudgetBar("Fun", 0.2, model.StatusOK, 10, 12, "$20 / $100"),
		BudgetBar("Transport", 0.5, model.StatusOK, 10, 12, "$60 / $120"),
	}
	budgets := ContentCard("Budgets", strings.Join(bars, "\n"), 60)

	spentH, budgetsH := lipgloss.Height(spent), lipgloss.Height(budgets)
	require.Less(t, spentH, budgetsH)

	lines := strings.Split(CardRow([]string{budgets, spent}), "\n")
	assert.Len(t, lines, budgetsH, "row is as tall as the tallest card")
	for i := spentH; i < len(lines); i++ {
		assert.Contains(t, lines[i], "\x1b[", "line %d below the metric card keeps its background", i)
	}
}

func TestMetricCardRowFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	row := MetricCardRow([]Metric{
		{Label: "Income", Value: "$3,200.00", Delta: "+4% vs Feb 2025"},
		{Label: "Expenses", Value: "$2,150.75"},
		{Label: "Balance", Value: "$1,049.25", Delta: "Mar 2025"},
	}, 90)

	for i, line := range strings.Split(row, "\n") {
		assert.Equal(t, 90, lipgloss.Width(line), "line %d", i)
	}
	assert.Contains(t, row, "$2,150.75")
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

func (a App) renderBudgetsTab(cw int) string {
	t := theme.Active
	views := a.dash.Budgets
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	// Row 1: totals across all budgets of the month
	limit, spent := decimal.Zero, decimal.Zero
	for _, v := range views {
		limit = limit.Add(v.Amount)
		spent = spent.Add(v.Spent)
	}
	pct := pipeline.Percentage(spent, limit)
	status := pipeline.Classify(pct)

	remaining := limit.Sub(spent)
	remainingColor := t.Green
	if remaining.IsNegative() {
		remainingColor = t.Red
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Budgeted", Value: cli.FormatMoney(limit), Delta: fmt.Sprintf("%d budgets", len(views))},
		{Label: "Spent", Value: cli.FormatMoney(spent), Delta: cli.FormatPercent(pct) + " used", Color: components.ColorForStatus(status)},
		{Label: "Remaining", Value: cli.FormatMoney(remaining), Delta: cli.FormatMonth(a.month, a.year), Color: remainingColor},
	}, cw))
	b.WriteString("\n")

	// Row 2: one bar per budget
	innerW := components.CardInnerWidth(cw)
	var body strings.Builder
	if len(views) == 0 {
		body.WriteString(muted.Render("No budgets for " + cli.FormatMonth(a.month, a.year) + ". Add one with `tally budgets add`."))
	}

	labelW := 0
	for _, v := range views {
		labelW = max(labelW, lipgloss.Width(budgetName(v.Budget)))
	}
	labelW = min(labelW, 20)

	trailW := 0
	trailing := make([]string, len(views))
	for i, v := range views {
		trailing[i] = cli.FormatMoney(v.Spent) + " / " + cli.FormatMoney(v.Amount)
		trailW = max(trailW, len(trailing[i]))
	}

	// label, bar, percentage and the trailing amounts
	barW := innerW - labelW - trailW - 9
	if barW < 10 {
		barW = 10
	}
	for i, v := range views {
		if i > 0 {
			body.WriteString("\n")
		}
		frac := v.Percentage.Div(decimal.NewFromInt(100)).InexactFloat64()
		body.WriteString(components.BudgetBar(budgetName(v.Budget), frac, v.Status, labelW, barW, trailing[i]))
	}
	b.WriteString(components.ContentCard("Budgets", body.String(), cw))

	// Row 3: alerts, when any budget is at or past the warning threshold
	if len(a.dash.Alerts) > 0 {
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Alerts", a.renderAlertsBody(innerW), cw))
	}
	return b.String()
}

func (a App) renderAlertsBody(w int) string {
	t := theme.Active
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, al := range a.dash.Alerts {
		if i > 0 {
			b.WriteString("\n")
		}
		status := pipeline.AlertStatus(al)
		badge := lipgloss.NewStyle().Foreground(components.ColorForStatus(status)).Background(t.Surface).Bold(true)

		label, over := "warning", cli.FormatMoney(al.Remaining)+" left"
		if status == model.StatusExceeded {
			label, over = "over", cli.FormatMoney(al.Spent.Sub(al.BudgetAmount))+" over"
		}
		b.WriteString(badge.Render(fmt.Sprintf("%-8s", label)))
		b.WriteString(text.Render(truncStr(categoryLabel(al.CategoryIcon, al.CategoryName), w/3)))
		b.WriteString(muted.Render("  " + cli.FormatPercent(pipeline.AlertPercentage(al)) + "  " + over))
	}
	return b.String()
}

func budgetName(b model.Budget) string {
	if b.Category == nil {
		return model.UnknownCategoryName
	}
	return categoryLabel(b.Category.Icon, b.Category.Name)
}

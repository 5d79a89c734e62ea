package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	d := a.dash
	var b strings.Builder

	// Row 1: Metric cards
	balanceColor := t.Green
	if d.Totals.Balance.IsNegative() {
		balanceColor = t.Red
	}
	alertDelta := "all on track"
	alertColor := t.Green
	if n := len(d.Alerts); n > 0 {
		exceeded := 0
		for _, al := range d.Alerts {
			if pipeline.AlertStatus(al) == model.StatusExceeded {
				exceeded++
			}
		}
		alertDelta = fmt.Sprintf("%d exceeded", exceeded)
		alertColor = t.Yellow
		if exceeded > 0 {
			alertColor = t.Red
		}
	}

	cards := []components.Metric{
		{Label: "Income", Value: cli.FormatMoney(d.Totals.Income), Delta: a.prevDelta(true), Color: t.Green},
		{Label: "Expenses", Value: cli.FormatMoney(d.Totals.Expense), Delta: a.prevDelta(false), Color: t.Red},
		{Label: "Balance", Value: cli.FormatMoney(d.Totals.Balance), Delta: cli.FormatMonth(d.Month, d.Year), Color: balanceColor},
		{Label: "Budget alerts", Value: fmt.Sprintf("%d", len(d.Alerts)), Delta: alertDelta, Color: alertColor},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: breakdown + trend side by side, stacked when compact
	breakdown := a.renderBreakdownBody(components.CardInnerWidth(cw / 2))
	trend := a.renderTrendBody(components.CardInnerWidth(cw - cw/2))
	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Spending by category", breakdown, cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Last 6 months", trend, cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Spending by category", breakdown, halves[0]),
			components.ContentCard("Last 6 months", trend, halves[1]),
		}))
	}
	b.WriteString("\n")

	// Row 3: daily spending for the month
	b.WriteString(components.ContentCard("Daily spending", a.renderDailyBody(components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	// Row 4: recent transactions
	b.WriteString(components.ContentCard("Recent transactions", a.renderRecentBody(components.CardInnerWidth(cw)), cw))

	return b.String()
}

// prevDelta compares the month with the previous one when the trend holds it.
func (a App) prevDelta(income bool) string {
	d := a.dash
	pm, py := pipeline.ShiftMonth(d.Month, d.Year, -1)
	for _, p := range d.Trend {
		if int(p.Month) != pm || p.Year != py {
			continue
		}
		prev, cur := p.Expense, d.Totals.Expense
		if income {
			prev, cur = p.Income, d.Totals.Income
		}
		if !prev.IsPositive() {
			return ""
		}
		return cli.FormatDelta(cur, prev) + " vs " + p.Label
	}
	return ""
}

func (a App) renderBreakdownBody(w int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	rows := pipeline.SortBreakdown(a.dash.Breakdown)
	if len(rows) == 0 {
		return muted.Render("No expenses this month")
	}

	nameW := 0
	for _, r := range rows {
		nameW = max(nameW, lipgloss.Width(categoryLabel(r.Icon, r.Name)))
	}
	nameW = min(nameW, 18)

	amountW := 0
	for _, r := range rows {
		amountW = max(amountW, len(cli.FormatMoney(r.Amount)))
	}

	barMax := w - nameW - amountW - 2
	if barMax < 4 {
		barMax = 4
	}

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	peak := rows[0].Amount
	var b strings.Builder
	for i, r := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		n := 0
		if peak.IsPositive() {
			n = int(r.Amount.Div(peak).InexactFloat64() * float64(barMax))
		}
		label := truncStr(categoryLabel(r.Icon, r.Name), nameW)
		bar := lipgloss.NewStyle().Foreground(categoryColor(r.Color)).Background(t.Surface).Render(strings.Repeat("█", n))
		b.WriteString(nameStyle.Render(label + strings.Repeat(" ", max(0, nameW-lipgloss.Width(label)))))
		b.WriteString(space.Render(" "))
		b.WriteString(bar)
		b.WriteString(space.Render(strings.Repeat(" ", barMax-n+1)))
		b.WriteString(muted.Render(fmt.Sprintf("%*s", amountW, cli.FormatMoney(r.Amount))))
	}
	return b.String()
}

func (a App) renderTrendBody(w int) string {
	t := theme.Active
	points := a.dash.Trend

	labels := make([]string, len(points))
	income := make([]float64, len(points))
	expense := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Label
		income[i] = p.Income.InexactFloat64()
		expense[i] = p.Expense.InexactFloat64()
	}
	return components.PairedBars(labels, []components.Series{
		{Name: "Income", Values: income, Color: t.Green},
		{Name: "Expenses", Values: expense, Color: t.Red},
	}, w)
}

func (a App) renderDailyBody(w int) string {
	t := theme.Active
	days := a.dash.Daily

	values := make([]float64, len(days))
	labels := make([]string, len(days))
	spent := false
	for i, d := range days {
		values[i] = d.InexactFloat64()
		labels[i] = strconv.Itoa(i + 1)
		spent = spent || d.IsPositive()
	}
	if !spent {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No spending this month")
	}

	h := 6
	if a.isCompactLayout() {
		h = 4
	}
	avg := pipeline.AverageDailySpending(days, a.dash.Month, a.dash.Year, a.now())
	chart := components.BarChart(values, labels, t.Red, avg.InexactFloat64(), w, h)
	if !avg.IsPositive() {
		return chart
	}
	legend := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
		Render("┄ average " + cli.FormatMoney(avg.Round(2)) + "/day, red days above it")
	return chart + "\n" + legend
}

func (a App) renderRecentBody(w int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.dash.Recent) == 0 {
		return muted.Render("No transactions this month")
	}

	var b strings.Builder
	for i, tx := range a.dash.Recent {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(transactionLine(tx, w, false))
	}
	return b.String()
}

// transactionLine renders date, description, category and a signed amount
// in one row of width w.
func transactionLine(tx model.Transaction, w int, selected bool) string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.SurfaceBright
	}

	dateStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	descStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg).Bold(selected)
	catStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(bg)
	amountStyle := lipgloss.NewStyle().Foreground(t.FlowColor(tx.Type)).Background(bg).Bold(true)
	space := lipgloss.NewStyle().Background(bg)

	cat := model.UnknownCategoryName
	swatch := model.UnknownCategoryColor
	if tx.Category != nil {
		cat = categoryLabel(tx.Category.Icon, tx.Category.Name)
		swatch = tx.Category.Color
	}

	date := cli.FormatDate(tx.Date)
	amount := cli.FormatSignedMoney(tx.Amount, tx.Type)
	catW := 18
	descW := w - len(date) - catW - len(amount) - 6
	if descW < 8 {
		descW = 8
	}
	desc := truncStr(tx.Description, descW)
	cat = truncStr(cat, catW-2)

	line := dateStyle.Render(date) + space.Render("  ") +
		descStyle.Render(desc) + space.Render(strings.Repeat(" ", max(0, descW-lipgloss.Width(desc))+1)) +
		lipgloss.NewStyle().Foreground(categoryColor(swatch)).Background(bg).Render("●") + space.Render(" ") +
		catStyle.Render(cat) + space.Render(strings.Repeat(" ", max(0, catW-2-lipgloss.Width(cat))+1))

	pad := w - lipgloss.Width(line) - lipgloss.Width(amount)
	return line + space.Render(strings.Repeat(" ", max(0, pad))) + amountStyle.Render(amount)
}

func categoryLabel(icon, name string) string {
	if icon == "" {
		return name
	}
	return icon + " " + name
}

// categoryColor falls back to the accent for values that are not hex colors.
func categoryColor(hex string) lipgloss.Color {
	if len(hex) == 7 && hex[0] == '#' {
		return lipgloss.Color(hex)
	}
	return theme.Active.Accent
}

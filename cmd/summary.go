package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

var (
	flagSumMonth int
	flagSumYear  int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Month overview: totals, spending by category, trend and budgets",
	RunE:  runSummary,
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{rootCmd, summaryCmd} {
		c.Flags().IntVar(&flagSumMonth, "month", int(now.Month()), "Month (1-12)")
		c.Flags().IntVar(&flagSumYear, "year", now.Year(), "Year")
	}
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	now := time.Now()
	dash, err := a.svc.LoadDashboard(ctx, flagSumMonth, flagSumYear, now)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("TALLY  " + cli.FormatMonth(dash.Month, dash.Year)))
	fmt.Println()

	// Totals with a delta against the previous month when it is in the trend.
	rows := [][]string{
		{"Income", cli.RenderAmount(dash.Totals.Income, model.Income)},
		{"Expenses", cli.RenderAmount(dash.Totals.Expense, model.Expense)},
		{"---"},
		{"Balance", cli.RenderBalance(dash.Totals.Balance)},
	}
	pm, py := pipeline.ShiftMonth(dash.Month, dash.Year, -1)
	for _, p := range dash.Trend {
		if int(p.Month) == pm && p.Year == py && p.Expense.IsPositive() {
			rows = append(rows, []string{"vs " + p.Label, "expenses " + cli.FormatDelta(dash.Totals.Expense, p.Expense)})
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()

	renderBreakdown(dash.Breakdown)
	renderTrend(dash.Trend)
	renderRecent(dash.Recent)

	if len(dash.Alerts) > 0 {
		fmt.Println(cli.RenderTitle("BUDGET ALERTS"))
		fmt.Println()
		fmt.Print(renderAlertTable(dash.Alerts))
		fmt.Println()
	}
	return nil
}

func renderBreakdown(rows []model.CategoryTotal) {
	fmt.Println(cli.RenderTitle("SPENDING BY CATEGORY"))
	fmt.Println()
	if len(rows) == 0 {
		fmt.Println(cli.RenderMuted("  No expenses this month."))
		fmt.Println()
		return
	}

	sorted := pipeline.SortBreakdown(rows)
	peak := sorted[0].Amount
	width := 0
	for _, r := range sorted {
		if n := lipgloss.Width(breakdownLabel(r)); n > width {
			width = n
		}
	}
	for _, r := range sorted {
		l := breakdownLabel(r)
		fmt.Println(cli.RenderHorizontalBar(l+strings.Repeat(" ", width-lipgloss.Width(l)), r.Amount, peak, 30, colorOf(r.Color)))
	}
	fmt.Println()
}

func breakdownLabel(r model.CategoryTotal) string {
	if r.Icon == "" {
		return r.Name
	}
	return r.Icon + " " + r.Name
}

func renderTrend(points []model.TrendPoint) {
	fmt.Println(cli.RenderTitle("LAST 6 MONTHS"))
	fmt.Println()

	income := make([]float64, len(points))
	expense := make([]float64, len(points))
	rows := make([][]string, 0, len(points)+3)
	for i, p := range points {
		income[i] = p.Income.InexactFloat64()
		expense[i] = p.Expense.InexactFloat64()
		rows = append(rows, []string{
			p.Label,
			cli.FormatMoney(p.Income),
			cli.FormatMoney(p.Expense),
			cli.RenderBalance(p.Income.Sub(p.Expense)),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Trend", cli.RenderSparkline(income), cli.RenderSparkline(expense), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Income", "Expenses", "Net"},
		Rows:    rows,
	}))
	fmt.Println()
}

func renderRecent(txs []model.Transaction) {
	fmt.Println(cli.RenderTitle("RECENT"))
	fmt.Println()
	if len(txs) == 0 {
		fmt.Println(cli.RenderMuted("  No transactions this month."))
		fmt.Println()
		return
	}
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		cat := model.UnknownCategoryName
		if t.Category != nil {
			cat = t.Category.Label()
		}
		rows = append(rows, []string{cli.FormatDate(t.Date), cli.Truncate(t.Description, 36), cat, cli.RenderAmount(t.Amount, t.Type)})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Description", "Category", "Amount"},
		Rows:     rows,
		LeftCols: 3,
	}))
	fmt.Println()
}

// colorOf falls back to the accent when a category color is not a hex value.
func colorOf(hex string) lipgloss.Color {
	if len(hex) == 7 && hex[0] == '#' {
		return lipgloss.Color(hex)
	}
	return cli.ColorAccent
}

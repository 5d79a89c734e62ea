package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session, daemon and this month's budget usage at a glance",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println()
	fmt.Println(cli.RenderTitle("TALLY STATUS"))
	fmt.Println()

	user, authed := a.session.User()
	signedIn := cli.RenderMuted("not signed in (run `tally login`)")
	if authed {
		signedIn = user.Name + " <" + user.Email + ">"
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Setting", "Value"},
		Rows: [][]string{
			{"Account", signedIn},
			{"Server", a.client.BaseURL()},
			{"Daemon", daemonSummary(filepath.Join(config.DataDir(), "tallyd.pid"))},
		},
		LeftCols: 2,
	}))

	if !authed {
		return nil
	}

	now := time.Now()
	month, year := int(now.Month()), now.Year()
	budgets, err := a.svc.Budgets(ctx, month, year)
	if err != nil {
		return err
	}
	if len(budgets) == 0 {
		fmt.Printf("  No budgets for %s.\n\n", cli.FormatMonth(month, year))
		return nil
	}

	rows := make([][]string, 0, len(budgets))
	for _, v := range pipeline.BudgetViews(budgets) {
		rows = append(rows, budgetUsageRow(v))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   cli.FormatMonth(month, year) + " budgets",
		Headers: []string{"Category", "Used", "Bar", "Left"},
		Rows:    rows,
	}))

	end := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	fmt.Printf("  Month ends in %s\n\n", formatCountdown(end.Sub(now)))
	return nil
}

// daemonSummary reports whether the watcher process behind pidFile is alive.
func daemonSummary(pidFile string) string {
	pid, err := readPID(pidFile)
	if err != nil {
		return "not running"
	}
	if !processAlive(pid) {
		return fmt.Sprintf("stale pid file (pid %d)", pid)
	}
	if st, err := readState(statePath(pidFile)); err == nil {
		return fmt.Sprintf("running (pid %d, http://%s, up %s)", pid, st.Addr, formatCountdown(time.Since(st.StartedAt)))
	}
	return fmt.Sprintf("running (pid %d)", pid)
}

func budgetUsageRow(v model.BudgetView) []string {
	pct := v.Percentage.Div(decimal.NewFromInt(100)).InexactFloat64()
	left := cli.FormatMoney(v.Remaining)
	if v.Remaining.IsNegative() {
		left = lipgloss.NewStyle().Foreground(cli.ColorRed).Render(cli.FormatMoney(v.Remaining.Neg()) + " over")
	}
	return []string{budgetLabel(v.Budget), cli.FormatPercent(v.Percentage), renderMiniBar(pct, v.Status, 20), left}
}

func renderMiniBar(pct float64, status model.BudgetStatus, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	filled := int(pct * float64(width))
	empty := width - filled

	barStyle := lipgloss.NewStyle().Foreground(cli.StatusColor(status))
	dimStyle := lipgloss.NewStyle().Foreground(cli.ColorTextDim)

	return barStyle.Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", empty))
}

func formatCountdown(d time.Duration) string {
	days := int(d.Hours()) / 24
	h := int(d.Hours()) % 24
	m := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, h)
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

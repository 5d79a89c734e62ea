package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/store"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Budget status changes recorded by the daemon",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Most recent events to show")
	budgetsCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DBPath())
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer func() { _ = st.Close() }()

	events, err := st.AlertEvents(flagHistoryLimit)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ALERT HISTORY"))
	fmt.Println()
	if len(events) == 0 {
		fmt.Println(cli.RenderMuted("  Nothing recorded yet. Start the watcher with `tally daemon --detach`."))
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			cli.FormatAgo(e.ObservedAt),
			e.CategoryName,
			cli.StatusLabel(e.Previous) + " → " + cli.RenderStatus(e.Status),
			cli.FormatMoney(e.Spent) + " / " + cli.FormatMoney(e.BudgetAmount),
			cli.FormatPercent(e.Percentage),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"When", "Category", "Change", "Spent", "Used"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}

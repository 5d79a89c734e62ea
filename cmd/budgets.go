package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

var (
	flagBudgetMonth    int
	flagBudgetYear     int
	flagBudgetAmount   string
	flagBudgetCategory string
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget", "b"},
	Short:   "Monthly budgets and their consumption",
	RunE:    runBudgetsList,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show budgets for a month",
	RunE:  runBudgetsList,
}

var budgetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a budget for an expense category",
	RunE:  runBudgetsAdd,
}

var budgetsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsEdit,
}

var budgetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsDelete,
}

var budgetsAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Budgets at or past 80% of their limit",
	RunE:  runBudgetsAlerts,
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{budgetsCmd, budgetsListCmd, budgetsAddCmd, budgetsEditCmd} {
		c.Flags().IntVar(&flagBudgetMonth, "month", int(now.Month()), "Month (1-12)")
		c.Flags().IntVar(&flagBudgetYear, "year", now.Year(), "Year")
	}
	for _, c := range []*cobra.Command{budgetsAddCmd, budgetsEditCmd} {
		c.Flags().StringVar(&flagBudgetAmount, "amount", "", "Monthly limit, e.g. 400")
		c.Flags().StringVarP(&flagBudgetCategory, "category", "c", "", "Expense category id or name")
	}
	budgetsDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")

	budgetsCmd.AddCommand(budgetsListCmd, budgetsAddCmd, budgetsEditCmd, budgetsDeleteCmd, budgetsAlertsCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	budgets, err := a.svc.Budgets(ctx, flagBudgetMonth, flagBudgetYear)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS  " + cli.FormatMonth(flagBudgetMonth, flagBudgetYear)))
	fmt.Println()

	if len(budgets) == 0 {
		fmt.Println(cli.RenderMuted("  No budgets for this month. Add one with `tally budgets add`."))
		return nil
	}

	limit, spent := decimal.Zero, decimal.Zero
	rows := make([][]string, 0, len(budgets)+2)
	for _, v := range pipeline.BudgetViews(budgets) {
		rows = append(rows, budgetListRow(v))
		limit = limit.Add(v.Amount)
		spent = spent.Add(v.Spent)
	}
	rows = append(rows, []string{"---"})
	total := pipeline.Percentage(spent, limit)
	rows = append(rows, []string{
		"Total", cli.FormatMoney(spent), cli.FormatMoney(limit), cli.RenderBalance(limit.Sub(spent)),
		cli.FormatPercent(total), cli.RenderStatus(pipeline.Classify(total)), "",
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Category", "Spent", "Limit", "Remaining", "Used", "Status", "ID"},
		Rows:     rows,
		LeftCols: 1,
	}))
	return nil
}

// budgetListRow renders one budget; bar, percentage and status all come
// from the view so they cannot disagree.
func budgetListRow(v model.BudgetView) []string {
	return []string{
		budgetLabel(v.Budget),
		cli.FormatMoney(v.Spent),
		cli.FormatMoney(v.Amount),
		cli.RenderBalance(v.Remaining),
		cli.RenderBudgetBar(v.Percentage, 20),
		cli.RenderStatus(v.Status),
		v.ID,
	}
}

func budgetLabel(b model.Budget) string {
	if b.Category == nil {
		return cli.RenderSwatch(model.UnknownCategoryColor) + " " + model.UnknownCategoryName
	}
	return cli.RenderSwatch(b.Category.Color) + " " + b.Category.Label()
}

func applyBudgetFlags(cmd *cobra.Command, d *model.BudgetDraft, cats []model.Category) error {
	if cmd.Flags().Changed("amount") {
		amt, err := decimal.NewFromString(flagBudgetAmount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		d.Amount = amt
	}
	if cmd.Flags().Changed("category") {
		c, err := findCategory(cats, flagBudgetCategory)
		if err != nil {
			return err
		}
		d.CategoryID = c.ID
	}
	if cmd.Flags().Changed("month") {
		d.Month = flagBudgetMonth
	}
	if cmd.Flags().Changed("year") {
		d.Year = flagBudgetYear
	}
	return nil
}

func runBudgetsAdd(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cats, err := a.svc.Categories(ctx, model.Expense)
	if err != nil {
		return err
	}

	d := model.NewBudgetDraft(time.Now())
	if err := applyBudgetFlags(cmd, &d, cats); err != nil {
		return err
	}
	if !anyChanged(cmd, "amount", "category") {
		if err := budgetForm("New budget", &d, cats); err != nil {
			return err
		}
	}

	b, err := a.svc.CreateBudget(ctx, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Budget of %s set for %s (%s)\n", cli.FormatMoney(b.Amount), cli.FormatMonth(b.Month, b.Year), b.ID)
	return nil
}

func runBudgetsEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.svc.Budget(ctx, args[0])
	if err != nil {
		return err
	}
	cats, err := a.svc.Categories(ctx, model.Expense)
	if err != nil {
		return err
	}

	d := model.DraftFromBudget(b)
	if err := applyBudgetFlags(cmd, &d, cats); err != nil {
		return err
	}
	if !anyChanged(cmd, "amount", "category", "month", "year") {
		if err := budgetForm("Edit budget", &d, cats); err != nil {
			return err
		}
	}

	updated, err := a.svc.UpdateBudget(ctx, b.ID, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s: %s for %s\n", updated.ID, cli.FormatMoney(updated.Amount), cli.FormatMonth(updated.Month, updated.Year))
	return nil
}

func runBudgetsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !flagYes {
		b, err := a.svc.Budget(ctx, args[0])
		if err != nil {
			return err
		}
		name := model.UnknownCategoryName
		if b.Category != nil {
			name = b.Category.Name
		}
		ok, err := confirm(fmt.Sprintf("Delete the %s budget for %s?", name, cli.FormatMonth(b.Month, b.Year)))
		if err != nil || !ok {
			return err
		}
	}

	if err := a.svc.DeleteBudget(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", args[0])
	return nil
}

func runBudgetsAlerts(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	alerts, err := a.svc.BudgetAlerts(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET ALERTS"))
	fmt.Println()
	if len(alerts) == 0 {
		fmt.Println(cli.RenderMuted("  All budgets are on track."))
		return nil
	}

	fmt.Print(renderAlertTable(alerts))
	return nil
}

func renderAlertTable(alerts []model.BudgetAlert) string {
	rows := make([][]string, 0, len(alerts))
	for _, al := range alerts {
		status := pipeline.AlertStatus(al)
		name := al.CategoryName
		if al.CategoryIcon != "" {
			name = al.CategoryIcon + " " + name
		}
		rows = append(rows, []string{
			cli.RenderSwatch(al.CategoryColor) + " " + name,
			cli.FormatMoney(al.Spent),
			cli.FormatMoney(al.BudgetAmount),
			cli.RenderBudgetBar(pipeline.AlertPercentage(al), 20),
			cli.RenderStatus(status),
		})
	}
	return cli.RenderTable(cli.Table{
		Headers:  []string{"Category", "Spent", "Limit", "Used", "Status"},
		Rows:     rows,
		LeftCols: 1,
	})
}

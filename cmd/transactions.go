package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/csvio"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/service"
)

var (
	flagTxMonth    int
	flagTxYear     int
	flagTxAll      bool
	flagTxType     string
	flagTxCategory string
	flagTxSearch   string

	flagTxAmount string
	flagTxDate   string
	flagTxDesc   string

	flagImportDryRun  bool
	flagImportWorkers int
	flagExportOut     string
)

var transactionsCmd = &cobra.Command{
	Use:     "transactions",
	Aliases: []string{"tx", "txn"},
	Short:   "List and manage transactions",
	RunE:    runTransactionsList,
}

var transactionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	RunE:  runTransactionsList,
}

var transactionsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	RunE:  runTransactionsAdd,
}

var transactionsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsEdit,
}

var transactionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsDelete,
}

var transactionsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-create transactions from CSV (date,type,amount,description,category)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransactionsImport,
}

var transactionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write transactions as CSV",
	RunE:  runTransactionsExport,
}

func init() {
	now := time.Now()
	for _, c := range []*cobra.Command{transactionsCmd, transactionsListCmd, transactionsExportCmd} {
		c.Flags().IntVar(&flagTxMonth, "month", int(now.Month()), "Month (1-12)")
		c.Flags().IntVar(&flagTxYear, "year", now.Year(), "Year")
		c.Flags().BoolVar(&flagTxAll, "all", false, "Ignore month/year")
		c.Flags().StringVarP(&flagTxType, "type", "t", "", "income or expense")
		c.Flags().StringVarP(&flagTxCategory, "category", "c", "", "Category id or name")
		c.Flags().StringVarP(&flagTxSearch, "search", "s", "", "Description contains (case-insensitive)")
	}
	for _, c := range []*cobra.Command{transactionsAddCmd, transactionsEditCmd} {
		c.Flags().StringVar(&flagTxAmount, "amount", "", "Amount, e.g. 12.50")
		c.Flags().StringVarP(&flagTxType, "type", "t", "", "income or expense")
		c.Flags().StringVar(&flagTxDate, "date", "", "Date, YYYY-MM-DD")
		c.Flags().StringVarP(&flagTxDesc, "description", "d", "", "Description")
		c.Flags().StringVarP(&flagTxCategory, "category", "c", "", "Category id or name")
	}
	transactionsDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")
	transactionsImportCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate only; create nothing")
	transactionsImportCmd.Flags().IntVarP(&flagImportWorkers, "workers", "w", service.DefaultImportWorkers, "Concurrent create requests")
	transactionsExportCmd.Flags().StringVarP(&flagExportOut, "output", "o", "", "Output file (default stdout)")

	transactionsCmd.AddCommand(transactionsListCmd, transactionsAddCmd, transactionsEditCmd,
		transactionsDeleteCmd, transactionsImportCmd, transactionsExportCmd)
	rootCmd.AddCommand(transactionsCmd)
}

// listFilter builds the filter from flags, resolving a category name.
func listFilter(cats []model.Category) (pipeline.Filter, error) {
	f := pipeline.Filter{Search: flagTxSearch}
	if !flagTxAll {
		f.Month, f.Year = flagTxMonth, flagTxYear
	}
	typ, err := optionalType(flagTxType)
	if err != nil {
		return f, err
	}
	f.Type = typ
	if flagTxCategory != "" {
		c, err := findCategory(cats, flagTxCategory)
		if err != nil {
			return f, err
		}
		f.CategoryID = c.ID
	}
	return f, nil
}

func runTransactionsList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cats, err := a.svc.Categories(ctx, "")
	if err != nil {
		return err
	}
	f, err := listFilter(cats)
	if err != nil {
		return err
	}
	txs, err := a.svc.FilteredTransactions(ctx, f)
	if err != nil {
		return err
	}

	title := "All transactions"
	if f.Month > 0 {
		title = cli.FormatMonth(f.Month, f.Year)
	}
	fmt.Println()
	fmt.Println(cli.RenderTitle("TRANSACTIONS  " + title))
	fmt.Println()

	if len(txs) == 0 {
		fmt.Println(cli.RenderMuted("  No transactions match."))
		return nil
	}

	rows := make([][]string, 0, len(txs)+2)
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		cat := model.UnknownCategoryName
		if t.Category != nil {
			cat = t.Category.Label()
		}
		rows = append(rows, []string{
			cli.FormatDate(t.Date),
			cli.Truncate(t.Description, 40),
			cat,
			cli.RenderAmount(t.Amount, t.Type),
			t.ID,
		})
		if t.Type == model.Income {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{fmt.Sprintf("%d transactions", len(txs)), "", "Net", cli.RenderBalance(income.Sub(expense)), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Date", "Description", "Category", "Amount", "ID"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}

func applyTransactionFlags(cmd *cobra.Command, d *model.TransactionDraft, cats []model.Category) error {
	if cmd.Flags().Changed("amount") {
		amt, err := decimal.NewFromString(flagTxAmount)
		if err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		d.Amount = amt
	}
	if cmd.Flags().Changed("type") {
		t, err := model.ParseType(flagTxType)
		if err != nil {
			return err
		}
		d.Type = t
	}
	if cmd.Flags().Changed("date") {
		dt, err := model.ParseDate(flagTxDate)
		if err != nil {
			return err
		}
		d.Date = dt
	}
	if cmd.Flags().Changed("description") {
		d.Description = flagTxDesc
	}
	if cmd.Flags().Changed("category") {
		c, err := findCategory(cats, flagTxCategory)
		if err != nil {
			return err
		}
		d.CategoryID = c.ID
		if !cmd.Flags().Changed("type") {
			d.Type = c.Type
		}
	}
	return nil
}

func runTransactionsAdd(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cats, err := a.svc.Categories(ctx, "")
	if err != nil {
		return err
	}

	d := model.NewTransactionDraft(time.Now())
	if err := applyTransactionFlags(cmd, &d, cats); err != nil {
		return err
	}
	if !cmd.Flags().Changed("amount") {
		if err := transactionForm("New transaction", &d, cats); err != nil {
			return err
		}
	}

	t, err := a.svc.CreateTransaction(ctx, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Recorded %s on %s (%s)\n", cli.FormatSignedMoney(t.Amount, t.Type), cli.FormatDate(t.Date), t.ID)
	return nil
}

func runTransactionsEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := a.svc.Transaction(ctx, args[0])
	if err != nil {
		return err
	}
	cats, err := a.svc.Categories(ctx, "")
	if err != nil {
		return err
	}

	d := model.DraftFromTransaction(t)
	if err := applyTransactionFlags(cmd, &d, cats); err != nil {
		return err
	}
	if !anyChanged(cmd, "amount", "type", "date", "description", "category") {
		if err := transactionForm("Edit transaction", &d, cats); err != nil {
			return err
		}
	}

	updated, err := a.svc.UpdateTransaction(ctx, t.ID, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s\n", updated.ID)
	return nil
}

func runTransactionsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !flagYes {
		t, err := a.svc.Transaction(ctx, args[0])
		if err != nil {
			return err
		}
		ok, err := confirm(fmt.Sprintf("Delete %s %q from %s?",
			cli.FormatSignedMoney(t.Amount, t.Type), t.Description, cli.FormatDate(t.Date)))
		if err != nil || !ok {
			return err
		}
	}

	if err := a.svc.DeleteTransaction(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", args[0])
	return nil
}

func runTransactionsImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cats, err := a.svc.Categories(ctx, "")
	if err != nil {
		return err
	}
	rows, rowErrs, err := csvio.Parse(f, cats)
	if err != nil {
		return err
	}

	for _, re := range rowErrs {
		fmt.Fprintln(os.Stderr, cli.RenderWarning(re.Error()))
	}
	if flagImportDryRun {
		fmt.Printf("  %d rows valid, %d rejected (dry run)\n", len(rows), len(rowErrs))
		return nil
	}

	var bar *progressbar.ProgressBar
	if !flagQuiet {
		bar = progressbar.NewOptions(len(rows),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Importing transactions...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
		)
	}

	drafts := make([]model.TransactionDraft, len(rows))
	for i, r := range rows {
		drafts[i] = r.Draft
	}
	var progress service.ProgressFunc
	if bar != nil {
		progress = func(int, int) { _ = bar.Add(1) }
	}
	res := a.svc.ImportTransactions(ctx, drafts, flagImportWorkers, progress)
	for i, err := range res.Errs {
		if err != nil {
			fmt.Fprintln(os.Stderr, cli.RenderWarning(fmt.Sprintf("line %d: %s", rows[i].Line, describeError(err))))
		}
	}
	created, failed := len(res.Created), res.Failed

	fmt.Printf("  Imported %d transactions (%d rejected, %d failed)\n", created, len(rowErrs), failed)
	return nil
}

func runTransactionsExport(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	cats, err := a.svc.Categories(ctx, "")
	if err != nil {
		return err
	}
	f, err := listFilter(cats)
	if err != nil {
		return err
	}
	txs, err := a.svc.FilteredTransactions(ctx, f)
	if err != nil {
		return err
	}

	out := os.Stdout
	if flagExportOut != "" {
		file, err := os.Create(flagExportOut)
		if err != nil {
			return err
		}
		defer func() { _ = file.Close() }()
		out = file
	}
	if err := csvio.Write(out, txs); err != nil {
		return err
	}
	if flagExportOut != "" {
		fmt.Fprintf(os.Stderr, "  Wrote %d transactions to %s\n", len(txs), flagExportOut)
	}
	return nil
}

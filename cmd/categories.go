package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
)

var (
	flagCatType  string
	flagCatName  string
	flagCatColor string
	flagCatIcon  string
	flagYes      bool
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cat", "category"},
	Short:   "List and manage categories",
	RunE:    runCategoriesList,
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List system and personal categories",
	RunE:  runCategoriesList,
}

var categoriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a personal category",
	RunE:  runCategoriesAdd,
}

var categoriesEditCmd = &cobra.Command{
	Use:   "edit <id|name>",
	Short: "Edit a personal category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesEdit,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a personal category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

func init() {
	categoriesListCmd.Flags().StringVarP(&flagCatType, "type", "t", "", "Only income or expense")
	for _, c := range []*cobra.Command{categoriesAddCmd, categoriesEditCmd} {
		c.Flags().StringVar(&flagCatName, "name", "", "Category name")
		c.Flags().StringVarP(&flagCatType, "type", "t", "", "income or expense")
		c.Flags().StringVar(&flagCatColor, "color", "", "Hex color, e.g. #FF6B6B")
		c.Flags().StringVar(&flagCatIcon, "icon", "", "Icon (emoji)")
	}
	categoriesDeleteCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation")

	categoriesCmd.AddCommand(categoriesListCmd, categoriesAddCmd, categoriesEditCmd, categoriesDeleteCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func runCategoriesList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	typ, err := optionalType(flagCatType)
	if err != nil {
		return err
	}
	cats, err := a.svc.Categories(ctx, typ)
	if err != nil {
		return err
	}

	var system, personal []model.Category
	for _, c := range cats {
		if c.IsSystem() {
			system = append(system, c)
		} else {
			personal = append(personal, c)
		}
	}

	fmt.Println()
	fmt.Print(renderCategoryTable("System categories", system))
	fmt.Println()
	if len(personal) == 0 {
		fmt.Println(cli.RenderMuted("  No personal categories yet. Add one with `tally categories add`."))
		return nil
	}
	fmt.Print(renderCategoryTable("Your categories", personal))
	return nil
}

func renderCategoryTable(title string, cats []model.Category) string {
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{
			cli.RenderSwatch(c.Color) + " " + c.Label(),
			string(c.Type),
			c.Color,
			c.ID,
		})
	}
	return cli.RenderTable(cli.Table{
		Title:    title,
		Headers:  []string{"Category", "Type", "Color", "ID"},
		Rows:     rows,
		LeftCols: 4,
	})
}

func runCategoriesAdd(cmd *cobra.Command, _ []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	a, err := openAuthedApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	d := model.NewCategoryDraft()
	if err := applyCategoryFlags(cmd, &d); err != nil {
		return err
	}
	if !cmd.Flags().Changed("name") {
		if err := categoryForm("New category", &d); err != nil {
			return err
		}
	}

	c, err := a.svc.CreateCategory(ctx, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Created %s (%s)\n", c.Label(), c.ID)
	return nil
}

func runCategoriesEdit(cmd *cobra.Command, args []string) error {
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
	c, err := findCategory(cats, args[0])
	if err != nil {
		return err
	}

	d := model.DraftFromCategory(c)
	if err := applyCategoryFlags(cmd, &d); err != nil {
		return err
	}
	if !anyChanged(cmd, "name", "type", "color", "icon") && !c.IsSystem() {
		if err := categoryForm("Edit "+c.Name, &d); err != nil {
			return err
		}
	}

	updated, err := a.svc.UpdateCategory(ctx, c, d)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s\n", updated.Label())
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
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
	c, err := findCategory(cats, args[0])
	if err != nil {
		return err
	}

	if !flagYes && !c.IsSystem() {
		ok, err := confirm(fmt.Sprintf("Delete category %q?", c.Name))
		if err != nil || !ok {
			return err
		}
	}

	if err := a.svc.DeleteCategory(ctx, c); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", c.Label())
	return nil
}

func applyCategoryFlags(cmd *cobra.Command, d *model.CategoryDraft) error {
	if cmd.Flags().Changed("name") {
		d.Name = flagCatName
	}
	if cmd.Flags().Changed("type") {
		t, err := model.ParseType(flagCatType)
		if err != nil {
			return err
		}
		d.Type = t
	}
	if cmd.Flags().Changed("color") {
		d.Color = flagCatColor
	}
	if cmd.Flags().Changed("icon") {
		d.Icon = flagCatIcon
	}
	return nil
}

// findCategory matches ref against ids first, then names case-insensitively.
func findCategory(cats []model.Category, ref string) (model.Category, error) {
	for _, c := range cats {
		if c.ID == ref {
			return c, nil
		}
	}
	var matches []model.Category
	for _, c := range cats {
		if strings.EqualFold(c.Name, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.Category{}, fmt.Errorf("no category %q", ref)
	default:
		return model.Category{}, fmt.Errorf("%q matches %d categories; use the id", ref, len(matches))
	}
}

func optionalType(s string) (model.Type, error) {
	if s == "" {
		return "", nil
	}
	return model.ParseType(s)
}

func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, n := range names {
		if cmd.Flags().Changed(n) {
			return true
		}
	}
	return false
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func positiveAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return errors.New("not a number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	return nil
}

func validDate(s string) error {
	_, err := model.ParseDate(strings.TrimSpace(s))
	return err
}

func typeOptions() []huh.Option[model.Type] {
	return []huh.Option[model.Type]{
		huh.NewOption("Expense", model.Expense),
		huh.NewOption("Income", model.Income),
	}
}

func categoryOptions(cats []model.Category) []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(cats))
	for _, c := range cats {
		opts = append(opts, huh.NewOption(c.Label(), c.ID))
	}
	return opts
}

func credentialsForm(c *model.Credentials) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Email").Value(&c.Email).Validate(notBlank),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password).Validate(notBlank),
	)).Run()
}

func registrationForm(r *model.Registration) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Name").Value(&r.Name).Validate(notBlank),
		huh.NewInput().Title("Email").Value(&r.Email).Validate(notBlank),
		huh.NewInput().Title("Password").Description("At least 6 characters").
			EchoMode(huh.EchoModePassword).Value(&r.Password).
			Validate(func(s string) error {
				if len(s) < 6 {
					return errors.New("at least 6 characters")
				}
				return nil
			}),
	)).Run()
}

func categoryForm(title string, d *model.CategoryDraft) error {
	return huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(title),
		huh.NewInput().Title("Name").Value(&d.Name).Validate(func(s string) error {
			if n := len([]rune(strings.TrimSpace(s))); n < 3 || n > 50 {
				return errors.New("3 to 50 characters")
			}
			return nil
		}),
		huh.NewSelect[model.Type]().Title("Type").Options(typeOptions()...).Value(&d.Type),
		huh.NewInput().Title("Color").Description("Hex, e.g. #FF6B6B").Value(&d.Color),
		huh.NewInput().Title("Icon").Value(&d.Icon).Validate(notBlank),
	)).Run()
}

// transactionForm edits d in place. The category list follows the selected
// type so a mismatched pair cannot be picked.
func transactionForm(title string, d *model.TransactionDraft, cats []model.Category) error {
	amount := ""
	if !d.Amount.IsZero() {
		amount = d.Amount.String()
	}
	date := d.Date.String()
	if d.Date.IsZero() {
		date = model.DateOf(time.Now()).String()
	}

	err := huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(title),
		huh.NewSelect[model.Type]().Title("Type").Options(typeOptions()...).Value(&d.Type),
		huh.NewInput().Title("Amount").Value(&amount).Validate(positiveAmount),
		huh.NewInput().Title("Date").Description("YYYY-MM-DD").Value(&date).Validate(validDate),
		huh.NewInput().Title("Description").CharLimit(255).Value(&d.Description),
		huh.NewSelect[string]().Title("Category").
			OptionsFunc(func() []huh.Option[string] {
				return categoryOptions(pipeline.CategoriesOfType(cats, d.Type))
			}, &d.Type).
			Value(&d.CategoryID),
	)).Run()
	if err != nil {
		return err
	}

	d.Amount, _ = decimal.NewFromString(strings.TrimSpace(amount))
	d.Date, _ = model.ParseDate(strings.TrimSpace(date))
	return nil
}

func budgetForm(title string, d *model.BudgetDraft, cats []model.Category) error {
	amount := ""
	if !d.Amount.IsZero() {
		amount = d.Amount.String()
	}
	month := strconv.Itoa(d.Month)
	year := strconv.Itoa(d.Year)

	err := huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(title),
		huh.NewSelect[string]().Title("Category").
			Options(categoryOptions(pipeline.CategoriesOfType(cats, model.Expense))...).
			Value(&d.CategoryID),
		huh.NewInput().Title("Amount").Value(&amount).Validate(positiveAmount),
		huh.NewInput().Title("Month").Value(&month).Validate(intBetween(1, 12)),
		huh.NewInput().Title("Year").Value(&year).Validate(intBetween(2000, 9999)),
	)).Run()
	if err != nil {
		return err
	}

	d.Amount, _ = decimal.NewFromString(strings.TrimSpace(amount))
	d.Month, _ = strconv.Atoi(strings.TrimSpace(month))
	d.Year, _ = strconv.Atoi(strings.TrimSpace(year))
	return nil
}

func intBetween(lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < lo || n > hi {
			return fmt.Errorf("between %d and %d", lo, hi)
		}
		return nil
	}
}

func confirm(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().Title(title).Affirmative("Delete").Negative("Cancel").Value(&ok).Run()
	return ok, err
}

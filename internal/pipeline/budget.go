package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// Alert thresholds in percent of the budget amount.
var (
	WarningAt  = decimal.NewFromInt(80)
	ExceededAt = decimal.NewFromInt(100)
)

var hundred = decimal.NewFromInt(100)

// Classify maps a consumption percentage to an alert level. It is the only
// place the thresholds are applied.
func Classify(pct decimal.Decimal) model.BudgetStatus {
	switch {
	case pct.GreaterThanOrEqual(ExceededAt):
		return model.StatusExceeded
	case pct.GreaterThanOrEqual(WarningAt):
		return model.StatusWarning
	default:
		return model.StatusOK
	}
}

// Percentage returns spent/amount*100, or zero when amount is not positive.
func Percentage(spent, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return spent.Mul(hundred).Div(amount)
}

// effectivePercentage is the one percentage a budget is shown and
// classified with: the server's value, or spent/amount*100 when the server
// sent none.
func effectivePercentage(pct, spent, amount decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return Percentage(spent, amount)
	}
	return pct
}

// BudgetStatus classifies a budget by its effective percentage.
func BudgetStatus(b model.Budget) model.BudgetStatus {
	return Classify(effectivePercentage(b.Percentage, b.Spent, b.Amount))
}

// BudgetViews pairs each budget with its status, keeping input order. The
// view's Percentage is the value its Status was classified from, so bars,
// badges and labels rendered from a view always agree.
func BudgetViews(budgets []model.Budget) []model.BudgetView {
	out := make([]model.BudgetView, 0, len(budgets))
	for _, b := range budgets {
		b.Percentage = effectivePercentage(b.Percentage, b.Spent, b.Amount)
		out = append(out, model.BudgetView{Budget: b, Status: Classify(b.Percentage)})
	}
	return out
}

// BudgetAlerts projects budgets at or past the warning threshold into
// alerts, highest consumption first.
func BudgetAlerts(budgets []model.Budget) []model.BudgetAlert {
	var out []model.BudgetAlert
	for _, v := range BudgetViews(budgets) {
		if v.Status == model.StatusOK {
			continue
		}
		a := model.BudgetAlert{
			BudgetID:      v.ID,
			CategoryID:    v.CategoryID,
			CategoryName:  model.UnknownCategoryName,
			CategoryColor: model.UnknownCategoryColor,
			CategoryIcon:  model.DefaultCategoryIcon,
			BudgetAmount:  v.Amount,
			Spent:         v.Spent,
			Remaining:     v.Remaining,
			Percentage:    v.Percentage,
			Status:        v.Status,
		}
		if c := v.Category; c != nil {
			if c.Name != "" {
				a.CategoryName = c.Name
			}
			if c.Color != "" {
				a.CategoryColor = c.Color
			}
			if c.Icon != "" {
				a.CategoryIcon = c.Icon
			}
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage.GreaterThan(out[j].Percentage)
	})
	return out
}

// AlertStatus returns the status of a server alert, classifying its
// effective percentage when the server left the status blank.
func AlertStatus(a model.BudgetAlert) model.BudgetStatus {
	if a.Status != "" {
		return a.Status
	}
	return Classify(effectivePercentage(a.Percentage, a.Spent, a.BudgetAmount))
}

// AlertPercentage is the percentage an alert is displayed with.
func AlertPercentage(a model.BudgetAlert) decimal.Decimal {
	return effectivePercentage(a.Percentage, a.Spent, a.BudgetAmount)
}

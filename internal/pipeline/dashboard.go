package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// Dashboard is everything the summary views render for one month.
type Dashboard struct {
	Month     int
	Year      int
	Totals    model.MonthTotals
	Breakdown []model.CategoryTotal
	Trend     []model.TrendPoint
	Daily     []decimal.Decimal
	Recent    []model.Transaction
	Budgets   []model.BudgetView
	Alerts    []model.BudgetAlert
}

// BuildDashboard composes the month's aggregates. The trend always ends at
// now's month, independent of the selected month.
func BuildDashboard(txs []model.Transaction, budgets []model.Budget, month, year int, now time.Time) Dashboard {
	return Dashboard{
		Month:     month,
		Year:      year,
		Totals:    MonthlyTotals(txs, month, year),
		Breakdown: CategoryBreakdown(txs, month, year),
		Trend:     MonthlyTrend(txs, now),
		Daily:     DailySpending(txs, month, year),
		Recent:    RecentTransactions(txs, month, year),
		Budgets:   BudgetViews(budgets),
		Alerts:    BudgetAlerts(budgets),
	}
}

// SplitCategories separates system categories from the user's own,
// preserving order.
func SplitCategories(cats []model.Category) (system, personal []model.Category) {
	for _, c := range cats {
		if c.IsSystem() {
			system = append(system, c)
		} else {
			personal = append(personal, c)
		}
	}
	return system, personal
}

// CategoriesOfType keeps categories of one type. The empty type keeps all.
func CategoriesOfType(cats []model.Category, typ model.Type) []model.Category {
	if typ == "" {
		return cats
	}
	var out []model.Category
	for _, c := range cats {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// ShiftMonth moves (month, year) by delta months.
func ShiftMonth(month, year, delta int) (int, int) {
	t := time.Date(year, time.Month(month)+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return int(t.Month()), t.Year()
}

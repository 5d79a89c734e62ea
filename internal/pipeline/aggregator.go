// Package pipeline derives totals, breakdowns, trends and budget status
// from already-fetched transactions and budgets. Every function is pure.
package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// TrendMonths is the length of the trailing trend window.
const TrendMonths = 6

// RecentLimit caps RecentTransactions.
const RecentLimit = 5

// MonthlyTotals sums income and expense for transactions dated in the given
// month (1-12) and year.
func MonthlyTotals(txs []model.Transaction, month, year int) model.MonthTotals {
	totals := model.MonthTotals{
		Month:   month,
		Year:    year,
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	for _, t := range txs {
		if !t.Date.In(month, year) {
			continue
		}
		switch t.Type {
		case model.Income:
			totals.Income = totals.Income.Add(t.Amount)
		case model.Expense:
			totals.Expense = totals.Expense.Add(t.Amount)
		}
	}
	totals.Balance = totals.Income.Sub(totals.Expense)
	return totals
}

// CategoryBreakdown groups the month's expenses by category, in the order
// each category is first seen. Display fields come from the first
// transaction of each category; missing categories get placeholders.
func CategoryBreakdown(txs []model.Transaction, month, year int) []model.CategoryTotal {
	index := make(map[string]int)
	var out []model.CategoryTotal

	for _, t := range txs {
		if t.Type != model.Expense || !t.Date.In(month, year) {
			continue
		}
		i, ok := index[t.CategoryID]
		if !ok {
			ct := model.CategoryTotal{
				CategoryID: t.CategoryID,
				Name:       model.UnknownCategoryName,
				Color:      model.UnknownCategoryColor,
				Icon:       model.DefaultCategoryIcon,
				Amount:     decimal.Zero,
			}
			if c := t.Category; c != nil {
				if c.Name != "" {
					ct.Name = c.Name
				}
				if c.Color != "" {
					ct.Color = c.Color
				}
				if c.Icon != "" {
					ct.Icon = c.Icon
				}
			}
			i = len(out)
			index[t.CategoryID] = i
			out = append(out, ct)
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
		out[i].Count++
	}
	return out
}

// SortBreakdown orders a breakdown by amount, largest first. Ties keep
// their first-seen order.
func SortBreakdown(rows []model.CategoryTotal) []model.CategoryTotal {
	sorted := make([]model.CategoryTotal, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	return sorted
}

// MonthlyTrend returns income and expense for the six calendar months ending
// at now's month, oldest first. Months without transactions are zero.
func MonthlyTrend(txs []model.Transaction, now time.Time) []model.TrendPoint {
	points := make([]model.TrendPoint, TrendMonths)
	slot := make(map[[2]int]int, TrendMonths)

	for i := 0; i < TrendMonths; i++ {
		first := time.Date(now.Year(), now.Month()-time.Month(TrendMonths-1-i), 1, 0, 0, 0, 0, time.UTC)
		points[i] = model.TrendPoint{
			Label:   first.Format("Jan 2006"),
			Month:   first.Month(),
			Year:    first.Year(),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
		slot[[2]int{first.Year(), int(first.Month())}] = i
	}

	for _, t := range txs {
		i, ok := slot[[2]int{t.Date.Year, int(t.Date.Month)}]
		if !ok {
			continue
		}
		switch t.Type {
		case model.Income:
			points[i].Income = points[i].Income.Add(t.Amount)
		case model.Expense:
			points[i].Expense = points[i].Expense.Add(t.Amount)
		}
	}
	return points
}

// RecentTransactions returns up to RecentLimit transactions of the month,
// newest first.
func RecentTransactions(txs []model.Transaction, month, year int) []model.Transaction {
	inMonth := Where(txs, InMonth(month, year))
	SortByDateDesc(inMonth)
	if len(inMonth) > RecentLimit {
		inMonth = inMonth[:RecentLimit]
	}
	return inMonth
}

// SortByDateDesc sorts in place, newest first. Same-day entries fall back to
// creation time.
func SortByDateDesc(txs []model.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if c := txs[i].Date.Compare(txs[j].Date); c != 0 {
			return c > 0
		}
		return txs[i].CreatedAt.After(txs[j].CreatedAt)
	})
}

// DailySpending sums the month's expenses per calendar day. Index 0 is the
// 1st; the slice always covers the whole month. Days the month does not
// have are skipped.
func DailySpending(txs []model.Transaction, month, year int) []decimal.Decimal {
	days := make([]decimal.Decimal, model.DaysIn(time.Month(month), year))
	for i := range days {
		days[i] = decimal.Zero
	}
	for _, t := range txs {
		if t.Type != model.Expense || !t.Date.In(month, year) {
			continue
		}
		if t.Date.Day < 1 || t.Date.Day > len(days) {
			continue
		}
		days[t.Date.Day-1] = days[t.Date.Day-1].Add(t.Amount)
	}
	return days
}

// AverageDailySpending divides the month's spending by the days elapsed as
// of now: all of them for past months, none for future ones.
func AverageDailySpending(daily []decimal.Decimal, month, year int, now time.Time) decimal.Decimal {
	elapsed := len(daily)
	switch cur := now.Year()*12 + int(now.Month()); {
	case year*12+month > cur:
		return decimal.Zero
	case year*12+month == cur:
		elapsed = min(now.Day(), len(daily))
	}
	if elapsed == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, d := range daily[:elapsed] {
		sum = sum.Add(d)
	}
	return sum.Div(decimal.NewFromInt(int64(elapsed)))
}

package pipeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// syntheticLedger builds n transactions spread over the last year across
// ten categories.
func syntheticLedger(n int) ([]model.Transaction, []model.Budget) {
	r := rand.New(rand.NewSource(1))
	cats := make([]model.Category, 10)
	for i := range cats {
		typ := model.Expense
		if i == 0 {
			typ = model.Income
		}
		cats[i] = model.Category{ID: fmt.Sprintf("c%d", i), Name: fmt.Sprintf("Cat %d", i), Type: typ, Color: "#112233"}
	}

	start := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	txs := make([]model.Transaction, n)
	for i := range txs {
		c := cats[r.Intn(len(cats))]
		d := start.AddDate(0, 0, r.Intn(365))
		txs[i] = model.Transaction{
			ID:          fmt.Sprintf("t%d", i),
			Type:        c.Type,
			Amount:      decimal.NewFromInt(int64(r.Intn(50000))).Shift(-2),
			Date:        model.Date{Year: d.Year(), Month: d.Month(), Day: d.Day()},
			Description: fmt.Sprintf("purchase %d", i),
			CategoryID:  c.ID,
			Category:    &c,
		}
	}

	budgets := make([]model.Budget, 0, len(cats)-1)
	for _, c := range cats[1:] {
		budgets = append(budgets, model.Budget{
			ID: "b" + c.ID, CategoryID: c.ID, Amount: decimal.NewFromInt(800), Month: 3, Year: 2025,
			Spent: decimal.NewFromInt(int64(r.Intn(1200))), Category: &c,
		})
	}
	for i := range budgets {
		budgets[i].Percentage = Percentage(budgets[i].Spent, budgets[i].Amount)
		budgets[i].Remaining = budgets[i].Amount.Sub(budgets[i].Spent)
	}
	return txs, budgets
}

func BenchmarkBuildDashboard(b *testing.B) {
	txs, budgets := syntheticLedger(20_000)
	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d := BuildDashboard(txs, budgets, 3, 2025, now)
		if len(d.Trend) != TrendMonths {
			b.Fatalf("trend has %d points", len(d.Trend))
		}
	}
}

func BenchmarkFilterApply(b *testing.B) {
	txs, _ := syntheticLedger(20_000)
	f := Filter{Month: 3, Year: 2025, Type: model.Expense, Search: "PURCHASE 1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Apply(txs)
	}
}

func BenchmarkSortByDateDesc(b *testing.B) {
	txs, _ := syntheticLedger(20_000)
	work := make([]model.Transaction, len(txs))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(work, txs)
		SortByDateDesc(work)
	}
}

package pipeline

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
)

func mustDate(t testing.TB, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func tx(t testing.TB, typ model.Type, amount, date, catID string) model.Transaction {
	t.Helper()
	return model.Transaction{
		ID:         fmt.Sprintf("%s-%s-%s", typ, date, catID),
		Type:       typ,
		Amount:     decimal.RequireFromString(amount),
		Date:       mustDate(t, date),
		CategoryID: catID,
		Category:   &model.Category{ID: catID, Name: "Cat " + catID, Color: "#112233", Icon: "🛒", Type: typ},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestJanuaryScenario(t *testing.T) {
	txs := []model.Transaction{
		tx(t, model.Expense, "100", "2025-01-05", "catA"),
		tx(t, model.Income, "500", "2025-01-10", "catB"),
		tx(t, model.Expense, "50", "2025-02-01", "catA"),
	}

	totals := MonthlyTotals(txs, 1, 2025)
	assert.True(t, totals.Expense.Equal(dec("100")), "expense %s", totals.Expense)
	assert.True(t, totals.Income.Equal(dec("500")), "income %s", totals.Income)
	assert.True(t, totals.Balance.Equal(dec("400")), "balance %s", totals.Balance)

	breakdown := CategoryBreakdown(txs, 1, 2025)
	require.Len(t, breakdown, 1)
	assert.Equal(t, "catA", breakdown[0].CategoryID)
	assert.True(t, breakdown[0].Amount.Equal(dec("100")))
}

func TestMonthlyTotals_BalanceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 200; trial++ {
		var txs []model.Transaction
		n := rng.Intn(40)
		for i := 0; i < n; i++ {
			typ := model.Expense
			if rng.Intn(2) == 0 {
				typ = model.Income
			}
			amt := fmt.Sprintf("%d.%02d", rng.Intn(1000), rng.Intn(100))
			date := fmt.Sprintf("2025-%02d-%02d", 1+rng.Intn(3), 1+rng.Intn(28))
			txs = append(txs, tx(t, typ, amt, date, fmt.Sprintf("c%d", rng.Intn(4))))
		}
		for m := 1; m <= 3; m++ {
			got := MonthlyTotals(txs, m, 2025)
			require.True(t, got.Income.Sub(got.Expense).Equal(got.Balance),
				"trial %d month %d: %s - %s != %s", trial, m, got.Income, got.Expense, got.Balance)
		}
	}
}

func TestMonthlyTotals_UsesWrittenCalendarDay(t *testing.T) {
	var late model.Transaction
	require.NoError(t, late.Date.UnmarshalJSON([]byte(`"2025-01-31T23:30:00-05:00"`)))
	late.Type = model.Expense
	late.Amount = dec("20")

	var utcLate model.Transaction
	require.NoError(t, utcLate.Date.UnmarshalJSON([]byte(`"2025-03-31T23:59:59.999Z"`)))
	utcLate.Type = model.Income
	utcLate.Amount = dec("7")

	txs := []model.Transaction{late, utcLate}
	assert.True(t, MonthlyTotals(txs, 1, 2025).Expense.Equal(dec("20")))
	assert.True(t, MonthlyTotals(txs, 2, 2025).Expense.IsZero())
	assert.True(t, MonthlyTotals(txs, 3, 2025).Income.Equal(dec("7")))
}

func TestCategoryBreakdown_NoIncomeNoDoubleCount(t *testing.T) {
	txs := []model.Transaction{
		tx(t, model.Expense, "10", "2025-05-01", "food"),
		tx(t, model.Income, "999", "2025-05-02", "food"),
		tx(t, model.Expense, "15.50", "2025-05-03", "rent"),
		tx(t, model.Expense, "4.50", "2025-05-04", "food"),
		tx(t, model.Expense, "1000", "2025-06-01", "food"),
	}

	got := CategoryBreakdown(txs, 5, 2025)
	require.Len(t, got, 2)
	assert.Equal(t, "food", got[0].CategoryID)
	assert.True(t, got[0].Amount.Equal(dec("14.50")))
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "rent", got[1].CategoryID)

	sum := decimal.Zero
	count := 0
	for _, row := range got {
		sum = sum.Add(row.Amount)
		count += row.Count
	}
	assert.True(t, sum.Equal(MonthlyTotals(txs, 5, 2025).Expense))
	assert.Equal(t, 3, count)
}

func TestCategoryBreakdown_MissingCategoryUsesPlaceholders(t *testing.T) {
	orphan := model.Transaction{Type: model.Expense, Amount: dec("3"), Date: mustDate(t, "2025-05-09"), CategoryID: "gone"}
	noAmount := model.Transaction{Type: model.Expense, Date: mustDate(t, "2025-05-10"), CategoryID: "gone"}

	got := CategoryBreakdown([]model.Transaction{orphan, noAmount}, 5, 2025)
	require.Len(t, got, 1)
	assert.Equal(t, model.UnknownCategoryName, got[0].Name)
	assert.Equal(t, model.UnknownCategoryColor, got[0].Color)
	assert.Equal(t, model.DefaultCategoryIcon, got[0].Icon)
	assert.True(t, got[0].Amount.Equal(dec("3")))
}

func TestSortBreakdown(t *testing.T) {
	rows := []model.CategoryTotal{
		{CategoryID: "a", Amount: dec("5")},
		{CategoryID: "b", Amount: dec("50")},
		{CategoryID: "c", Amount: dec("5")},
	}
	got := SortBreakdown(rows)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].CategoryID, got[1].CategoryID, got[2].CategoryID})
	assert.Equal(t, "a", rows[0].CategoryID, "input must not be reordered")
}

func TestMonthlyTrend_SixMonthsOldestFirst(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		tx(t, model.Income, "100", "2025-03-01", "x"),
		tx(t, model.Expense, "40", "2024-11-30", "y"),
		tx(t, model.Expense, "60", "2024-09-30", "y"), // outside the window
		tx(t, model.Expense, "1", "2025-04-01", "y"),  // future
	}

	got := MonthlyTrend(txs, now)
	require.Len(t, got, TrendMonths)

	labels := make([]string, len(got))
	for i, p := range got {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"Oct 2024", "Nov 2024", "Dec 2024", "Jan 2025", "Feb 2025", "Mar 2025"}, labels)
	assert.True(t, got[1].Expense.Equal(dec("40")))
	assert.True(t, got[5].Income.Equal(dec("100")))
	for _, i := range []int{0, 2, 3, 4} {
		assert.True(t, got[i].Income.IsZero() && got[i].Expense.IsZero(), "month %s should be empty", got[i].Label)
	}
}

func TestMonthlyTrend_EmptyInput(t *testing.T) {
	got := MonthlyTrend(nil, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, TrendMonths)
	assert.Equal(t, "Aug 2025", got[0].Label)
	assert.Equal(t, "Jan 2026", got[5].Label)
}

func TestRecentTransactions(t *testing.T) {
	var txs []model.Transaction
	for day := 1; day <= 8; day++ {
		txs = append(txs, tx(t, model.Expense, "1", fmt.Sprintf("2025-07-%02d", day), "c"))
	}
	txs = append(txs, tx(t, model.Expense, "1", "2025-08-01", "c"))
	rand.New(rand.NewSource(7)).Shuffle(len(txs), func(i, j int) { txs[i], txs[j] = txs[j], txs[i] })

	got := RecentTransactions(txs, 7, 2025)
	require.Len(t, got, RecentLimit)
	for i, want := range []string{"2025-07-08", "2025-07-07", "2025-07-06", "2025-07-05", "2025-07-04"} {
		assert.Equal(t, want, got[i].Date.String())
	}
}

func TestRecentTransactions_FewerThanLimit(t *testing.T) {
	txs := []model.Transaction{tx(t, model.Income, "1", "2025-07-02", "c")}
	assert.Len(t, RecentTransactions(txs, 7, 2025), 1)
	assert.Empty(t, RecentTransactions(txs, 6, 2025))
}

func TestShiftMonth(t *testing.T) {
	m, y := ShiftMonth(1, 2025, -1)
	assert.Equal(t, [2]int{12, 2024}, [2]int{m, y})
	m, y = ShiftMonth(12, 2025, 1)
	assert.Equal(t, [2]int{1, 2026}, [2]int{m, y})
}

func TestSplitCategories(t *testing.T) {
	owner := "u1"
	cats := []model.Category{
		{ID: "s1"},
		{ID: "p1", UserID: &owner},
		{ID: "s2"},
	}
	system, personal := SplitCategories(cats)
	require.Len(t, system, 2)
	require.Len(t, personal, 1)
	assert.Equal(t, "p1", personal[0].ID)
}

func TestDailySpending(t *testing.T) {
	txs := []model.Transaction{
		tx(t, model.Expense, "10", "2024-02-01", "a"),
		tx(t, model.Expense, "5.50", "2024-02-01", "b"),
		tx(t, model.Income, "900", "2024-02-01", "s"),
		tx(t, model.Expense, "3", "2024-02-29", "a"),
		tx(t, model.Expense, "99", "2024-03-01", "a"),
	}

	got := DailySpending(txs, 2, 2024)
	require.Len(t, got, 29, "leap February")
	assert.True(t, got[0].Equal(dec("15.50")))
	assert.True(t, got[28].Equal(dec("3")))
	assert.True(t, got[14].IsZero())
}

func TestDailySpending_SkipsDaysOutsideMonth(t *testing.T) {
	bad := model.Transaction{
		ID: "bad", Type: model.Expense, Amount: dec("12"),
		Date: model.Date{Year: 2025, Month: time.February, Day: 30},
	}
	good := tx(t, model.Expense, "4", "2025-02-28", "a")

	var got []decimal.Decimal
	require.NotPanics(t, func() { got = DailySpending([]model.Transaction{bad, good}, 2, 2025) })
	require.Len(t, got, 28)
	assert.True(t, got[27].Equal(dec("4")))

	require.NotPanics(t, func() {
		d := BuildDashboard([]model.Transaction{bad, good}, nil, 2, 2025, time.Date(2025, time.February, 10, 0, 0, 0, 0, time.UTC))
		assert.True(t, d.Totals.Expense.Equal(dec("16")), "totals still count the row")
	})
}

func TestAverageDailySpending(t *testing.T) {
	daily := make([]decimal.Decimal, 30)
	for i := range daily {
		daily[i] = decimal.Zero
	}
	daily[0] = dec("30")
	daily[9] = dec("60")

	midApril := time.Date(2025, time.April, 10, 12, 0, 0, 0, time.UTC)
	assert.True(t, AverageDailySpending(daily, 4, 2025, midApril).Equal(dec("9")), "current month divides by days so far")
	assert.True(t, AverageDailySpending(daily, 4, 2025, midApril.AddDate(0, 2, 0)).Equal(dec("3")), "past month divides by its length")
	assert.True(t, AverageDailySpending(daily, 4, 2025, midApril.AddDate(0, -1, 0)).IsZero(), "future month")
	assert.True(t, AverageDailySpending(nil, 4, 2025, midApril).IsZero())
}

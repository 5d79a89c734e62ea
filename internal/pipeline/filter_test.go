package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/tally/internal/model"
)

func ids(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func filterFixture(t *testing.T) []model.Transaction {
	t.Helper()
	mk := func(id string, typ model.Type, date, cat, desc string) model.Transaction {
		tr := tx(t, typ, "10", date, cat)
		tr.ID = id
		tr.Description = desc
		return tr
	}
	return []model.Transaction{
		mk("1", model.Expense, "2025-04-02", "food", "Weekly GROCERIES"),
		mk("2", model.Expense, "2025-04-03", "food", "Coffee"),
		mk("3", model.Income, "2025-04-05", "salary", "April salary"),
		mk("4", model.Expense, "2025-04-09", "rent", "Rent april"),
		mk("5", model.Expense, "2025-05-01", "food", "groceries"),
		mk("6", model.Income, "2025-04-20", "food", "Refund groceries"),
	}
}

func TestFilter_AllPredicatesMustHold(t *testing.T) {
	txs := filterFixture(t)

	got := Filter{Month: 4, Year: 2025, Type: model.Expense, CategoryID: "food", Search: "grocer"}.Apply(txs)
	assert.Equal(t, []string{"1"}, ids(got))

	got = Filter{Month: 4, Year: 2025, Search: "APRIL"}.Apply(txs)
	assert.Equal(t, []string{"3", "4"}, ids(got))

	got = Filter{Month: 4, Year: 2025}.Apply(txs)
	assert.Equal(t, []string{"1", "2", "3", "4", "6"}, ids(got))
}

func TestFilter_OrderIndependent(t *testing.T) {
	txs := filterFixture(t)
	f := Filter{Month: 4, Year: 2025, Type: model.Expense, CategoryID: "food", Search: "e"}
	preds := f.Predicates()
	require.Len(t, preds, 4)

	want := ids(f.Apply(txs))
	for _, perm := range permutations(len(preds)) {
		ordered := make([]Predicate, len(perm))
		for i, p := range perm {
			ordered[i] = preds[p]
		}
		// Apply one filter at a time, feeding each result into the next.
		cur := txs
		for _, p := range ordered {
			cur = Where(cur, p)
		}
		assert.Equal(t, want, ids(cur), "order %v", perm)
	}
}

func TestFilter_EmptyMeansEverything(t *testing.T) {
	txs := filterFixture(t)
	assert.Len(t, Filter{}.Apply(txs), len(txs))
	assert.Empty(t, Filter{}.Predicates())
}

func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, rest := range permutations(n - 1) {
		for i := 0; i <= len(rest); i++ {
			p := make([]int, 0, n)
			p = append(p, rest[:i]...)
			p = append(p, n-1)
			p = append(p, rest[i:]...)
			out = append(out, p)
		}
	}
	return out
}

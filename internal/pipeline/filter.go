package pipeline

import (
	"strings"

	"github.com/theirongolddev/tally/internal/model"
)

// Predicate reports whether a transaction passes one filter.
type Predicate func(model.Transaction) bool

// Filter is the transactions list view's client-side filter. Zero-valued
// fields do not restrict.
type Filter struct {
	Month      int
	Year       int
	Type       model.Type
	CategoryID string
	Search     string
}

// Predicates returns one independent predicate per active field.
func (f Filter) Predicates() []Predicate {
	var ps []Predicate
	if f.Month > 0 && f.Year > 0 {
		ps = append(ps, InMonth(f.Month, f.Year))
	}
	if f.Type != "" {
		ps = append(ps, OfType(f.Type))
	}
	if f.CategoryID != "" {
		ps = append(ps, InCategory(f.CategoryID))
	}
	if f.Search != "" {
		ps = append(ps, Matching(f.Search))
	}
	return ps
}

// Apply keeps transactions passing every predicate, preserving order.
func (f Filter) Apply(txs []model.Transaction) []model.Transaction {
	return Where(txs, f.Predicates()...)
}

// Where keeps transactions for which every predicate holds.
func Where(txs []model.Transaction, preds ...Predicate) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs))
next:
	for _, t := range txs {
		for _, p := range preds {
			if !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// InMonth matches transactions dated in month/year.
func InMonth(month, year int) Predicate {
	return func(t model.Transaction) bool { return t.Date.In(month, year) }
}

// OfType matches one transaction type.
func OfType(typ model.Type) Predicate {
	return func(t model.Transaction) bool { return t.Type == typ }
}

// InCategory matches one category id.
func InCategory(id string) Predicate {
	return func(t model.Transaction) bool { return t.CategoryID == id }
}

// Matching is a case-insensitive substring match on the description.
func Matching(search string) Predicate {
	return func(t model.Transaction) bool { return containsIgnoreCase(t.Description, search) }
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

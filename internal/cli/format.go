// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// FormatMoney formats an amount as dollars with two decimals and thousands
// separators. e.g., 1234.5 -> "$1,234.50", -3 -> "-$3.00"
func FormatMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + FormatMoney(d.Neg())
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	w, err := decimal.NewFromString(whole)
	if err != nil {
		return "$" + fixed
	}
	return "$" + humanize.Comma(w.IntPart()) + "." + frac
}

// FormatSignedMoney prefixes income with + and expenses with -.
func FormatSignedMoney(d decimal.Decimal, typ model.Type) string {
	if typ == model.Income {
		return "+" + FormatMoney(d)
	}
	return "-" + FormatMoney(d.Abs())
}

// FormatPercent formats a 0-100 percentage with no decimals. e.g., 89.6 -> "90%"
func FormatPercent(p decimal.Decimal) string {
	return p.Round(0).String() + "%"
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatMonth renders a month/year pair. e.g., (1, 2025) -> "January 2025"
func FormatMonth(month, year int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", time.Month(month), year)
}

// FormatDate renders a civil date for tables. e.g., "Jan 05, 2025"
func FormatDate(d model.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Time().Format("Jan 02, 2006")
}

// FormatAgo renders t relative to now. e.g., "3 minutes ago"
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// FormatDelta formats a month-over-month change with an explicit sign.
func FormatDelta(current, previous decimal.Decimal) string {
	delta := current.Sub(previous)
	if delta.IsNegative() {
		return "-" + FormatMoney(delta.Neg())
	}
	return "+" + FormatMoney(delta)
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

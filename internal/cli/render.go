package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
	ColorYellow    = lipgloss.Color("#D0A215")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	incomeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	expenseStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	// LeftCols is how many leading columns are left-aligned; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// pad fits cell into w display columns. Widths are measured with lipgloss so
// styled cells and emoji line up.
func pad(cell string, w int, left bool) string {
	gap := w - lipgloss.Width(cell)
	if gap < 0 {
		gap = 0
	}
	if left {
		return " " + cell + strings.Repeat(" ", gap) + " "
	}
	return " " + strings.Repeat(" ", gap) + cell + " "
}

func rule(widths []int, l, m, r string) string {
	var b strings.Builder
	b.WriteString(dimStyle.Render(l))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(m))
		}
	}
	b.WriteString(dimStyle.Render(r))
	b.WriteString("\n")
	return b.String()
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	leftCols := t.LeftCols
	if leftCols <= 0 {
		leftCols = 1
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╭", "┬", "╮"))

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], true)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(rule(widths, "├", "┼", "┤"))
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule(widths, "├", "┼", "┤"))
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], i < leftCols)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(rule(widths, "╰", "┴", "╯"))
	return b.String()
}

// StatusColor maps a budget status to its display color.
func StatusColor(s model.BudgetStatus) lipgloss.Color {
	switch s {
	case model.StatusExceeded:
		return ColorRed
	case model.StatusWarning:
		return ColorYellow
	default:
		return ColorGreen
	}
}

// StatusLabel is the badge text for a budget status.
func StatusLabel(s model.BudgetStatus) string {
	switch s {
	case model.StatusExceeded:
		return "Exceeded"
	case model.StatusWarning:
		return "Warning"
	default:
		return "On track"
	}
}

// RenderStatus renders a colored status badge.
func RenderStatus(s model.BudgetStatus) string {
	return lipgloss.NewStyle().Bold(true).Foreground(StatusColor(s)).Render(StatusLabel(s))
}

// RenderBudgetBar renders a budget usage bar colored by its classification.
// The bar is capped at full; the percentage label is not.
func RenderBudgetBar(pct decimal.Decimal, width int) string {
	if width <= 0 {
		return ""
	}
	ratio := pct.Div(decimal.NewFromInt(100)).InexactFloat64()
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(width))

	style := lipgloss.NewStyle().Foreground(StatusColor(pipeline.Classify(pct)))
	bar := style.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s", bar, style.Render(FormatPercent(pct)))
}

// RenderAmount colors an amount by transaction type.
func RenderAmount(d decimal.Decimal, typ model.Type) string {
	s := FormatSignedMoney(d, typ)
	if typ == model.Income {
		return incomeStyle.Render(s)
	}
	return expenseStyle.Render(s)
}

// RenderBalance colors a balance green when non-negative, red otherwise.
func RenderBalance(d decimal.Decimal) string {
	if d.IsNegative() {
		return expenseStyle.Render(FormatMoney(d))
	}
	return incomeStyle.Render(FormatMoney(d))
}

// RenderSwatch renders a category's color as a dot. Invalid colors fall
// back to muted text.
func RenderSwatch(hex string) string {
	if len(hex) != 7 || hex[0] != '#' {
		return mutedStyle.Render("●")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("●")
}

// RenderWarning renders a one-line warning.
func RenderWarning(msg string) string {
	return warnStyle.Render("! " + msg)
}

// RenderMuted renders secondary text.
func RenderMuted(msg string) string {
	return mutedStyle.Render(msg)
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

// RenderHorizontalBar renders one bar chart entry: label, bar, value.
func RenderHorizontalBar(label string, value, maxValue decimal.Decimal, maxWidth int, color lipgloss.Color) string {
	barLen := 0
	if maxValue.IsPositive() {
		barLen = int(value.Div(maxValue).InexactFloat64() * float64(maxWidth))
	}
	if barLen < 0 {
		barLen = 0
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))
	return fmt.Sprintf("  %s %s %s", label, bar, FormatMoney(value))
}

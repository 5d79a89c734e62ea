package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// ColorForStatus maps a budget status to the active theme's color.
func ColorForStatus(s model.BudgetStatus) lipgloss.Color {
	return theme.Active.StatusColor(s)
}

// BudgetBar renders a labeled consumption bar. pct is a fraction where 1 is
// the full budget; the bar caps at full while the label shows the real value.
func BudgetBar(label string, pct float64, status model.BudgetStatus, labelW, barWidth int, trailing string) string {
	t := theme.Active

	shown := pct
	if shown < 0 {
		shown = 0
	}
	if shown > 1 {
		shown = 1
	}

	color := ColorForStatus(status)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	trailStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	label = truncate(label, labelW)
	return labelStyle.Render(label+strings.Repeat(" ", max(0, labelW-lipgloss.Width(label)))) +
		spaceStyle.Render(" ") +
		bar.ViewAs(shown) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%4.0f%%", pct*100)) +
		spaceStyle.Render("  ") +
		trailStyle.Render(trailing)
}

func truncate(s string, limit int) string {
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

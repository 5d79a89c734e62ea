package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Transactions", Key: 't', KeyPos: 0},
	{Name: "Budgets", Key: 'b', KeyPos: 0},
	{Name: "Categories", Key: 'c', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // x is not in "Settings"
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Padding(0, 1).
			Render(tab.Name)
	}

	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pad := inactiveStyle.Render(" ")

	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		return pad +
			inactiveStyle.Render(tab.Name[:tab.KeyPos]) +
			keyStyle.Render(string(tab.Name[tab.KeyPos])) +
			inactiveStyle.Render(tab.Name[tab.KeyPos+1:]) +
			pad
	}
	return pad + inactiveStyle.Render(tab.Name) +
		dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]") + pad
}

// TabVisualWidth is the rendered width of a tab, used for mouse hit testing.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		parts = append(parts, renderTab(tab, i == activeIdx))
	}

	return lipgloss.NewStyle().
		Background(t.Surface).
		Width(width).
		Render(strings.Join(parts, sep))
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}

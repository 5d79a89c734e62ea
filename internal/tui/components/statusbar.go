package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/tui/theme"
)

// StatusInfo is what the bottom bar reports.
type StatusInfo struct {
	User        string
	Period      string // "January 2025"
	DataAge     string // "12s ago"
	Hits        int64
	Misses      int64
	Refreshing  bool
	AutoRefresh bool
	Err         string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := " [?]help  [h/l]month  [r]efresh  [q]uit"
	if info.Err != "" {
		left += "  " + warn.Render("! "+info.Err)
	}

	var right []string
	if info.Period != "" {
		right = append(right, accent.Render(info.Period))
	}
	if info.User != "" {
		right = append(right, info.User)
	}
	if info.Hits+info.Misses > 0 {
		right = append(right, fmt.Sprintf("cache %d/%d", info.Hits, info.Hits+info.Misses))
	}
	switch {
	case info.Refreshing:
		right = append(right, accent.Render("refreshing…"))
	case info.DataAge != "":
		right = append(right, "data "+info.DataAge)
	}
	if info.AutoRefresh {
		right = append(right, "auto")
	}
	r := strings.Join(right, "  ") + " "

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(r)
	if padding < 0 {
		padding = 0
	}

	return style.Render(left + strings.Repeat(" ", padding) + r)
}

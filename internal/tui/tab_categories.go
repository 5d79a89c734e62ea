package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

func (a App) renderCategoriesTab(cw int) string {
	sys := a.renderCategoryList(a.categories.System, "No system categories")
	own := a.renderCategoryList(a.categories.Personal, "No personal categories yet. Add one with `tally categories add`.")

	sysTitle := fmt.Sprintf("System (%d)", len(a.categories.System))
	ownTitle := fmt.Sprintf("Personal (%d)", len(a.categories.Personal))

	if a.isCompactLayout() {
		return components.ContentCard(sysTitle, sys, cw) + "\n" + components.ContentCard(ownTitle, own, cw)
	}
	halves := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		components.ContentCard(sysTitle, sys, halves[0]),
		components.ContentCard(ownTitle, own, halves[1]),
	})
}

// renderCategoryList shows expense categories first, then income.
func (a App) renderCategoryList(cats []model.Category, empty string) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	name := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface)

	if len(cats) == 0 {
		return muted.Render(empty)
	}

	var b strings.Builder
	first := true
	for _, typ := range []model.Type{model.Expense, model.Income} {
		var rows []model.Category
		for _, c := range cats {
			if c.Type == typ {
				rows = append(rows, c)
			}
		}
		if len(rows) == 0 {
			continue
		}
		if !first {
			b.WriteString("\n\n")
		}
		first = false
		b.WriteString(section.Render(strings.ToUpper(string(typ))))
		for _, c := range rows {
			b.WriteString("\n")
			b.WriteString(lipgloss.NewStyle().Foreground(categoryColor(c.Color)).Background(t.Surface).Render("●"))
			b.WriteString(space.Render(" "))
			b.WriteString(name.Render(c.Label()))
			b.WriteString(muted.Render("  " + c.Color))
		}
	}
	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// transactionsState tracks the transactions tab state.
type transactionsState struct {
	cursor int
	offset int // scroll offset for the list

	searching   bool
	searchInput textinput.Model
	searchQuery string

	typeFilter     model.Type
	categoryFilter string

	confirmDelete bool
	status        string
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search descriptions..."
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

func (s *transactionsState) moveCursor(delta, n int) {
	s.cursor += delta
	s.clamp(n)
}

func (s *transactionsState) clamp(n int) {
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.offset > s.cursor {
		s.offset = s.cursor
	}
}

// nextCategory returns the category after current in the combined list,
// wrapping to "" (all categories) after the last one.
func nextCategory(all []model.Category, current string) string {
	if current == "" {
		if len(all) == 0 {
			return ""
		}
		return all[0].ID
	}
	for i, c := range all {
		if c.ID == current && i+1 < len(all) {
			return all[i+1].ID
		}
	}
	return ""
}

func (a App) allCategories() []model.Category {
	all := make([]model.Category, 0, len(a.categories.System)+len(a.categories.Personal))
	all = append(all, a.categories.System...)
	return append(all, a.categories.Personal...)
}

func (a App) categoryName(id string) string {
	for _, c := range a.allCategories() {
		if c.ID == id {
			return categoryLabel(c.Icon, c.Name)
		}
	}
	return model.UnknownCategoryName
}

// updateTransactionsKeys handles list keys. handled is false for keys the
// global switch should see.
func (a App) updateTransactionsKeys(key string) (tea.Model, tea.Cmd, bool) {
	n := len(a.txs)
	switch key {
	case "j", "down":
		a.txState.moveCursor(1, n)
	case "k", "up":
		a.txState.moveCursor(-1, n)
	case "g":
		a.txState.cursor, a.txState.offset = 0, 0
	case "G":
		a.txState.moveCursor(n, n)
	case "/":
		a.txState.searching = true
		a.txState.searchInput = newSearchInput()
		a.txState.searchInput.SetValue(a.txState.searchQuery)
		a.txState.searchInput.Focus()
		return a, a.txState.searchInput.Cursor.BlinkCmd(), true
	case "f":
		switch a.txState.typeFilter {
		case "":
			a.txState.typeFilter = model.Expense
		case model.Expense:
			a.txState.typeFilter = model.Income
		default:
			a.txState.typeFilter = ""
		}
		a.txState.cursor, a.txState.offset = 0, 0
		return a, loadTransactionsCmd(a.backend, a.filter()), true
	case "C":
		a.txState.categoryFilter = nextCategory(a.allCategories(), a.txState.categoryFilter)
		a.txState.cursor, a.txState.offset = 0, 0
		return a, loadTransactionsCmd(a.backend, a.filter()), true
	case "d":
		if n > 0 {
			a.txState.confirmDelete = true
			a.txState.status = ""
		}
	case "esc":
		if a.txState.searchQuery == "" && a.txState.typeFilter == "" && a.txState.categoryFilter == "" {
			return a, nil, true
		}
		a.txState.searchQuery = ""
		a.txState.typeFilter = ""
		a.txState.categoryFilter = ""
		a.txState.cursor, a.txState.offset = 0, 0
		return a, loadTransactionsCmd(a.backend, a.filter()), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateTransactionsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.txState.searching = false
		a.txState.searchQuery = strings.TrimSpace(a.txState.searchInput.Value())
		a.txState.cursor, a.txState.offset = 0, 0
		return a, loadTransactionsCmd(a.backend, a.filter())
	case "esc":
		a.txState.searching = false
		return a, nil
	}
	var cmd tea.Cmd
	a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
	return a, cmd
}

func (a App) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	a.txState.confirmDelete = false
	if key != "y" || a.txState.cursor >= len(a.txs) {
		a.txState.status = "Delete cancelled"
		return a, nil
	}
	id := a.txs[a.txState.cursor].ID
	a.txState.status = "Deleting..."
	return a, deleteTransactionCmd(a.backend, id)
}

func (a App) renderTransactionsTab(cw, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(cw)

	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).Bold(true)
	var head strings.Builder
	head.WriteString(accent.Render(cli.FormatMonth(a.month, a.year)))
	head.WriteString(muted.Render(fmt.Sprintf("  %d transactions", len(a.txs))))
	if a.txState.typeFilter != "" {
		head.WriteString(muted.Render("  type: "))
		head.WriteString(accent.Render(string(a.txState.typeFilter)))
	}
	if a.txState.categoryFilter != "" {
		head.WriteString(muted.Render("  category: "))
		head.WriteString(accent.Render(a.categoryName(a.txState.categoryFilter)))
	}
	if a.txState.searching {
		head.WriteString(muted.Render("  / "))
		head.WriteString(a.txState.searchInput.View())
	} else if a.txState.searchQuery != "" {
		head.WriteString(muted.Render("  search: "))
		head.WriteString(accent.Render(a.txState.searchQuery))
	}

	// title, header, blank, footer, status and the card border
	visible := h - 7
	if visible < 1 {
		visible = 1
	}
	offset := a.txState.offset
	if a.txState.cursor < offset {
		offset = a.txState.cursor
	}
	if a.txState.cursor >= offset+visible {
		offset = a.txState.cursor - visible + 1
	}

	var body strings.Builder
	body.WriteString(head.String())
	body.WriteString("\n")

	if len(a.txs) == 0 {
		body.WriteString(muted.Render("No transactions match"))
	}
	end := min(len(a.txs), offset+visible)
	for i := offset; i < end; i++ {
		body.WriteString(transactionLine(a.txs[i], innerW, i == a.txState.cursor))
		if i < end-1 {
			body.WriteString("\n")
		}
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range a.txs {
		if tx.Type == model.Income {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}
	body.WriteString("\n\n")
	body.WriteString(muted.Render("Net "))
	body.WriteString(lipgloss.NewStyle().Foreground(t.SignColor(income.Sub(expense))).Background(t.Surface).Bold(true).
		Render(cli.FormatMoney(income.Sub(expense))))
	if len(a.txs) > visible {
		body.WriteString(muted.Render(fmt.Sprintf("  %d-%d of %d", offset+1, end, len(a.txs))))
	}
	body.WriteString("\n")

	switch {
	case a.txState.confirmDelete && a.txState.cursor < len(a.txs):
		tx := a.txs[a.txState.cursor]
		body.WriteString(warn.Render(fmt.Sprintf("Delete %q (%s)? [y/N]", truncStr(tx.Description, 40), cli.FormatMoney(tx.Amount))))
	case a.txState.status != "":
		body.WriteString(muted.Render(a.txState.status))
	default:
		body.WriteString(muted.Render("[j/k] move  [/] search  [f] type  [C] category  [d] delete  [Esc] clear"))
	}

	return components.ContentCard("Transactions", body.String(), cw)
}

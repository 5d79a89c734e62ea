// Package tui provides the interactive Bubble Tea dashboard for tally.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/pipeline"
	"github.com/theirongolddev/tally/internal/query"
	"github.com/theirongolddev/tally/internal/service"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

// Backend is the data the dashboard reads. *service.Service satisfies it.
type Backend interface {
	LoadDashboard(ctx context.Context, month, year int, now time.Time) (pipeline.Dashboard, error)
	FilteredTransactions(ctx context.Context, f pipeline.Filter) ([]model.Transaction, error)
	CategoryOverview(ctx context.Context) (service.Overview, error)
	DeleteTransaction(ctx context.Context, id string) error
	Cache() *query.Client
}

// Auth is the session the dashboard runs under. *session.Session satisfies it.
type Auth interface {
	User() (model.User, bool)
	Login(ctx context.Context, creds model.Credentials) (model.User, error)
}

// DataLoadedMsg carries everything one month's screens need.
type DataLoadedMsg struct {
	Month        int
	Year         int
	Dashboard    pipeline.Dashboard
	Transactions []model.Transaction
	Categories   service.Overview
	LoadTime     time.Duration
	Err          error
}

// TransactionsLoadedMsg is sent when only the filtered list was refetched.
type TransactionsLoadedMsg struct {
	Filter       pipeline.Filter
	Transactions []model.Transaction
	Err          error
}

// DeletedMsg reports a finished delete.
type DeletedMsg struct {
	ID  string
	Err error
}

// LoginDoneMsg reports a finished login attempt.
type LoginDoneMsg struct {
	User model.User
	Err  error
}

// App is the root Bubble Tea model.
type App struct {
	backend Backend
	auth    Auth
	user    model.User
	authed  bool

	// Data
	month      int
	year       int
	dash       pipeline.Dashboard
	txs        []model.Transaction
	categories service.Overview
	loaded     bool
	loading    bool
	loadErr    error
	loadTime   time.Duration

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	txState  transactionsState
	settings settingsState

	// Login (huh form) when no session is stored
	loginForm *huh.Form
	loginVals model.Credentials
	loginErr  error
	loggingIn bool

	spinner spinner.Model
	now     func() time.Time
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180

	// Scroll navigation
	minContentHeight = 5 // minimum content area height

	requestTimeout = 30 * time.Second
)

const (
	tabOverview = iota
	tabTransactions
	tabBudgets
	tabCategories
	tabSettings
)

// loadConfigOrDefault loads config, returning defaults on error.
// This ensures the TUI can always start even if config is corrupted.
func loadConfigOrDefault() config.Config {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// NewApp creates a new TUI app model.
func NewApp(backend Backend, auth Auth) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	cfg := loadConfigOrDefault()
	now := time.Now()

	a := App{
		backend:         backend,
		auth:            auth,
		month:           int(now.Month()),
		year:            now.Year(),
		autoRefresh:     cfg.TUI.AutoRefresh,
		refreshInterval: cfg.TUIRefreshInterval(),
		spinner:         sp,
		now:             time.Now,
	}
	a.user, a.authed = auth.User()
	if !a.authed {
		a.loginForm = newLoginForm(&a.loginVals, cfg.API.BaseURL)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	if a.authed {
		cmds = append(cmds, loadDataCmd(a.backend, a.month, a.year, a.filter(), a.now()))
	} else {
		cmds = append(cmds, a.loginForm.Init())
	}
	return tea.Batch(cmds...)
}

// filter is the transactions tab's current server-side filter.
func (a App) filter() pipeline.Filter {
	return pipeline.Filter{
		Month:      a.month,
		Year:       a.year,
		Type:       a.txState.typeFilter,
		CategoryID: a.txState.categoryFilter,
		Search:     a.txState.searchQuery,
	}
}

func (a *App) reload() tea.Cmd {
	a.loading = true
	return loadDataCmd(a.backend, a.month, a.year, a.filter(), a.now())
}

func (a *App) shiftMonth(delta int) tea.Cmd {
	if delta == 0 {
		now := a.now()
		a.month, a.year = int(now.Month()), now.Year()
	} else {
		a.month, a.year = pipeline.ShiftMonth(a.month, a.year, delta)
	}
	a.txState.cursor, a.txState.offset = 0, 0
	return a.reload()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.loginForm != nil {
			a.loginForm = a.loginForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.loginForm != nil {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabTransactions {
				a.txState.moveCursor(-1, len(a.txs))
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == tabTransactions {
				a.txState.moveCursor(1, len(a.txs))
			}
			return a, nil

		case tea.MouseButtonLeft:
			// Tab bar is the first line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					a.activeTab = tab
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		// Global: quit
		if key == "ctrl+c" {
			return a, tea.Quit
		}

		// Login form intercepts all keys
		if a.loginForm != nil && !a.loggingIn {
			return a.updateLoginForm(msg)
		}

		if !a.loaded {
			return a, nil
		}

		// Settings tab has its own keybindings (text input)
		if a.activeTab == tabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		// Transactions search mode intercepts all keys when active
		if a.activeTab == tabTransactions && a.txState.searching {
			return a.updateTransactionsSearch(msg)
		}

		// Pending delete confirmation
		if a.activeTab == tabTransactions && a.txState.confirmDelete {
			return a.updateDeleteConfirm(key)
		}

		// Help toggle
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}

		// Dismiss help
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == tabTransactions {
			if m, cmd, handled := a.updateTransactionsKeys(key); handled {
				return m, cmd
			}
		}

		// Settings tab navigation (non-editing mode)
		if a.activeTab == tabSettings {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "h", "[":
			return a, a.shiftMonth(-1)
		case "l", "]":
			return a, a.shiftMonth(1)
		case ".":
			return a, a.shiftMonth(0)
		case "r":
			if a.loading {
				return a, nil
			}
			// Manual refresh bypasses freshness
			a.backend.Cache().Clear()
			return a, a.reload()
		case "R":
			a.autoRefresh = !a.autoRefresh
			// Persist to config (best-effort, ignore errors)
			cfg := loadConfigOrDefault()
			cfg.TUI.AutoRefresh = a.autoRefresh
			_ = config.Save(cfg)
			return a, nil
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
			return a, nil
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
			return a, nil
		}
		if len(key) == 1 {
			if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
				a.activeTab = idx
			}
		}
		return a, nil

	case DataLoadedMsg:
		// A response for a month the user already left
		if msg.Month != a.month || msg.Year != a.year {
			return a, nil
		}
		a.loading = false
		a.lastRefresh = a.now()
		if msg.Err != nil {
			a.loadErr = msg.Err
			a.loaded = true
			return a, nil
		}
		a.loadErr = nil
		a.loaded = true
		a.dash = msg.Dashboard
		a.txs = msg.Transactions
		a.categories = msg.Categories
		a.loadTime = msg.LoadTime
		a.txState.clamp(len(a.txs))
		return a, nil

	case TransactionsLoadedMsg:
		if msg.Filter != a.filter() {
			return a, nil
		}
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.txs = msg.Transactions
		a.txState.clamp(len(a.txs))
		return a, nil

	case DeletedMsg:
		if msg.Err != nil {
			a.loadErr = msg.Err
			return a, nil
		}
		a.txState.status = "Deleted " + msg.ID
		return a, a.reload()

	case LoginDoneMsg:
		a.loggingIn = false
		if msg.Err != nil {
			a.loginErr = msg.Err
			a.loginVals.Password = ""
			a.loginForm = newLoginForm(&a.loginVals, loadConfigOrDefault().API.BaseURL)
			if a.width > 0 {
				a.loginForm = a.loginForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.loginForm.Init()
		}
		a.user, a.authed = msg.User, true
		a.loginForm = nil
		a.loginErr = nil
		return a, a.reload()

	case spinner.TickMsg:
		if !a.loaded || a.loading || a.loggingIn {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.authed && a.loaded && a.autoRefresh && !a.loading {
			if a.now().Sub(a.lastRefresh) >= a.refreshInterval {
				cmds = append(cmds, a.reload())
			}
		}
		return a, tea.Batch(cmds...)
	}

	// Forward unhandled messages to the login form (cursor blinks, etc.)
	if a.loginForm != nil && !a.loggingIn {
		return a.updateLoginForm(msg)
	}

	return a, nil
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if a.loginForm != nil || a.loggingIn {
		return a.viewLogin()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  tally needs at least %d columns.\n  Current width: %d\n",
		a.width,
		minTerminalWidth,
		a.width,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	spinnerStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ tally"))
	b.WriteString(subtitleStyle.Render(" · Personal Finance"))
	b.WriteString("\n\n")
	b.WriteString(spinnerStyle.Render(a.spinner.View()))
	b.WriteString(subtitleStyle.Render(" Loading " + cli.FormatMonth(a.month, a.year) + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o t b c x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"h l  [ ]", "Previous / Next month"},
			{".", "Current month"},
			{"j k  g G", "Navigate transactions"},
		}},
		{"Transactions", []struct{ key, desc string }{
			{"/", "Search descriptions"},
			{"f", "Cycle type filter"},
			{"C", "Cycle category filter"},
			{"d", "Delete selected"},
			{"Esc", "Clear search and filters"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() components.StatusInfo {
	st := a.backend.Cache().Stats()
	info := components.StatusInfo{
		User:        a.user.Name,
		Period:      cli.FormatMonth(a.month, a.year),
		Hits:        int64(st.Hits),
		Misses:      int64(st.Misses),
		Refreshing:  a.loading,
		AutoRefresh: a.autoRefresh,
	}
	if !a.lastRefresh.IsZero() {
		info.DataAge = cli.FormatAgo(a.lastRefresh)
	}
	if a.loadErr != nil {
		info.Err = truncStr(a.loadErr.Error(), 60)
	}
	return info
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusInfo())

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case tabBudgets:
		content = a.renderBudgetsTab(cw)
	case tabCategories:
		content = a.renderCategoriesTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	// Truncate + pad to exactly contentH lines
	content = padHeight(truncateHeight(content, contentH), contentH)

	// Fill each line to full width with background (fixes gaps between cards)
	content = fillLinesWithBackground(content, cw, t.Background)

	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd fetches the month's dashboard, the filtered transaction list
// and the category lists concurrently. The query cache dedupes overlap.
func loadDataCmd(b Backend, month, year int, f pipeline.Filter, now time.Time) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		msg := DataLoadedMsg{Month: month, Year: year}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			msg.Dashboard, err = b.LoadDashboard(gctx, month, year, now)
			return err
		})
		g.Go(func() error {
			var err error
			msg.Transactions, err = b.FilteredTransactions(gctx, f)
			return err
		})
		g.Go(func() error {
			var err error
			msg.Categories, err = b.CategoryOverview(gctx)
			return err
		})
		msg.Err = g.Wait()
		msg.LoadTime = time.Since(start)
		return msg
	}
}

func loadTransactionsCmd(b Backend, f pipeline.Filter) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		txs, err := b.FilteredTransactions(ctx, f)
		return TransactionsLoadedMsg{Filter: f, Transactions: txs, Err: err}
	}
}

func deleteTransactionCmd(b Backend, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return DeletedMsg{ID: id, Err: b.DeleteTransaction(ctx, id)}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color.
// This ensures gaps between cards and empty lines have proper background fill.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}

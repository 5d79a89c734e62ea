package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/cli"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/tui/components"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

const (
	settingsFieldAPIURL = iota
	settingsFieldTheme
	settingsFieldFreshFor
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldLogLevel
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

var logLevels = []string{"debug", "info", "warn", "error"}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	cfg := loadConfigOrDefault()
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		ti.Placeholder = "http://localhost:3000/api"
		ti.SetValue(cfg.API.BaseURL)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(cfg.Appearance.Theme)
	case settingsFieldFreshFor:
		ti.Placeholder = "30s"
		ti.SetValue(cfg.Cache.FreshFor)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60s (minimum 10s)"
		ti.SetValue(a.refreshInterval.String())
	case settingsFieldLogLevel:
		ti.Placeholder = strings.Join(logLevels, ", ")
		ti.SetValue(cfg.Logging.Level)
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited value and writes the config. Invalid
// input is reported through saveErr and leaves the file untouched.
func (a *App) settingsSave() {
	cfg := loadConfigOrDefault()
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		u, err := url.Parse(val)
		if err != nil || u.Scheme == "" || u.Host == "" {
			a.settings.saveErr = fmt.Errorf("%q is not an absolute URL", val)
			return
		}
		// Takes effect on next start; the live client keeps its base URL.
		cfg.API.BaseURL = strings.TrimRight(val, "/")
	case settingsFieldTheme:
		if _, ok := theme.Lookup(val); !ok {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return
		}
		theme.SetActive(val)
		cfg.Appearance.Theme = val
	case settingsFieldFreshFor:
		if _, err := time.ParseDuration(val); err != nil {
			a.settings.saveErr = fmt.Errorf("invalid duration %q", val)
			return
		}
		cfg.Cache.FreshFor = val
	case settingsFieldAutoRefresh:
		on, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("expected true or false, got %q", val)
			return
		}
		cfg.TUI.AutoRefresh = on
		a.autoRefresh = on
	case settingsFieldRefreshInterval:
		if _, err := time.ParseDuration(val); err != nil {
			a.settings.saveErr = fmt.Errorf("invalid duration %q", val)
			return
		}
		cfg.TUI.RefreshInterval = val
		a.refreshInterval = cfg.TUIRefreshInterval()
	case settingsFieldLogLevel:
		known := false
		for _, l := range logLevels {
			known = known || l == val
		}
		if !known {
			a.settings.saveErr = fmt.Errorf("log level must be one of %s", strings.Join(logLevels, ", "))
			return
		}
		cfg.Logging.Level = val
	}

	a.settings.saveErr = config.Save(cfg)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := loadConfigOrDefault()

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	greenStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	type field struct {
		label string
		value string
	}

	// Live App state for refresh settings so the display tracks the R toggle
	fields := []field{
		{"API URL", cfg.API.BaseURL},
		{"Theme", cfg.Appearance.Theme},
		{"Cache Freshness", cfg.CacheFreshFor().String()},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", a.refreshInterval.String()},
		{"Log Level", cfg.Logging.Level},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if pad := innerW - lipgloss.Width(marker) - lipgloss.Width(label) - lipgloss.Width(value); pad > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(greenStyle.Render("Saved!"))
	}

	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	st := a.backend.Cache().Stats()
	user := a.user.Name
	if a.user.Email != "" {
		user += " <" + a.user.Email + ">"
	}

	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Signed in as:  ") + valueStyle.Render(user) + "\n")
	infoBody.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Database:      ") + valueStyle.Render(config.DBPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Cache:         ") + valueStyle.Render(fmt.Sprintf("%s entries, %s hits, %s misses, %s invalidations",
		cli.FormatNumber(int64(st.Entries)), cli.FormatNumber(int64(st.Hits)), cli.FormatNumber(int64(st.Misses)), cli.FormatNumber(int64(st.Invalidations)))) + "\n")
	infoBody.WriteString(labelStyle.Render("Last load:     ") + valueStyle.Render(fmt.Sprintf("%.2fs", a.loadTime.Seconds())))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", infoBody.String(), cw))

	return b.String()
}

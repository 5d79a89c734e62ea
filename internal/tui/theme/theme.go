// Package theme defines color themes for the tally TUI dashboard and maps
// money direction and budget status onto them.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/tally/internal/model"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme - warm, paper-inspired dark theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// GruvboxDark is a retro, high-contrast dark theme.
var GruvboxDark = Theme{
	Name:          "gruvbox-dark",
	Background:    lipgloss.Color("#1D2021"),
	Surface:       lipgloss.Color("#282828"),
	SurfaceHover:  lipgloss.Color("#3C3836"),
	SurfaceBright: lipgloss.Color("#504945"),
	Border:        lipgloss.Color("#504945"),
	BorderBright:  lipgloss.Color("#665C54"),
	BorderAccent:  lipgloss.Color("#83A598"),
	TextDim:       lipgloss.Color("#665C54"),
	TextMuted:     lipgloss.Color("#A89984"),
	TextPrimary:   lipgloss.Color("#EBDBB2"),
	Accent:        lipgloss.Color("#83A598"),
	AccentBright:  lipgloss.Color("#A7C4B8"),
	AccentDim:     lipgloss.Color("#22302F"),
	Green:         lipgloss.Color("#98971A"),
	GreenBright:   lipgloss.Color("#B8BB26"),
	Orange:        lipgloss.Color("#FE8019"),
	Red:           lipgloss.Color("#FB4934"),
	Blue:          lipgloss.Color("#458588"),
	BlueBright:    lipgloss.Color("#83A598"),
	Yellow:        lipgloss.Color("#FABD2F"),
	Magenta:       lipgloss.Color("#D3869B"),
	Cyan:          lipgloss.Color("#8EC07C"),
}

// SolarizedLight is the only light theme; accents are darkened to stay
// readable on the cream background.
var SolarizedLight = Theme{
	Name:          "solarized-light",
	Background:    lipgloss.Color("#FDF6E3"),
	Surface:       lipgloss.Color("#EEE8D5"),
	SurfaceHover:  lipgloss.Color("#E4DDC8"),
	SurfaceBright: lipgloss.Color("#D9D2BC"),
	Border:        lipgloss.Color("#D3CBB7"),
	BorderBright:  lipgloss.Color("#93A1A1"),
	BorderAccent:  lipgloss.Color("#268BD2"),
	TextDim:       lipgloss.Color("#93A1A1"),
	TextMuted:     lipgloss.Color("#657B83"),
	TextPrimary:   lipgloss.Color("#073642"),
	Accent:        lipgloss.Color("#268BD2"),
	AccentBright:  lipgloss.Color("#2176B8"),
	AccentDim:     lipgloss.Color("#DCE6EC"),
	Green:         lipgloss.Color("#859900"),
	GreenBright:   lipgloss.Color("#6C7C00"),
	Orange:        lipgloss.Color("#CB4B16"),
	Red:           lipgloss.Color("#DC322F"),
	Blue:          lipgloss.Color("#268BD2"),
	BlueBright:    lipgloss.Color("#2176B8"),
	Yellow:        lipgloss.Color("#B58900"),
	Magenta:       lipgloss.Color("#D33682"),
	Cyan:          lipgloss.Color("#2AA198"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes, default first.
var All = []Theme{FlexokiDark, GruvboxDark, SolarizedLight, Terminal}

// Lookup returns the theme called name.
func Lookup(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return FlexokiDark
}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// StatusColor maps a budget status onto the palette.
func (t Theme) StatusColor(s model.BudgetStatus) lipgloss.Color {
	switch s {
	case model.StatusExceeded:
		return t.Red
	case model.StatusWarning:
		return t.Yellow
	default:
		return t.Green
	}
}

// FlowColor colors an amount by direction: income green, expense red.
func (t Theme) FlowColor(typ model.Type) lipgloss.Color {
	if typ == model.Income {
		return t.Green
	}
	return t.Red
}

// SignColor colors a net figure. Zero is neutral.
func (t Theme) SignColor(d decimal.Decimal) lipgloss.Color {
	switch d.Sign() {
	case 1:
		return t.Green
	case -1:
		return t.Red
	}
	return t.TextPrimary
}

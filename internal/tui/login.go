package tui

import (
	"context"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/model"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

func newLoginForm(vals *model.Credentials, server string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to tally").
				Description("Sign in to "+server+".\nNo account yet? Quit and run `tally register`."),
			huh.NewInput().
				Title("Email").
				Value(&vals.Email).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.Password).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("required")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(false)
}

func loginCmd(auth Auth, creds model.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		u, err := auth.Login(ctx, creds)
		return LoginDoneMsg{User: u, Err: err}
	}
}

func (a App) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.loginForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.loginForm = f
	}

	switch a.loginForm.State {
	case huh.StateCompleted:
		a.loggingIn = true
		creds := model.Credentials{Email: strings.TrimSpace(a.loginVals.Email), Password: a.loginVals.Password}
		return a, tea.Batch(loginCmd(a.auth, creds), a.spinner.Tick)
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) viewLogin() string {
	t := theme.Active

	if a.loggingIn {
		style := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Padding(1, 3)
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			style.Render(a.spinner.View()+" Signing in as "+a.loginVals.Email+"..."),
			lipgloss.WithWhitespaceBackground(t.Background))
	}

	var b strings.Builder
	b.WriteString(a.loginForm.View())
	if a.loginErr != nil {
		warn := lipgloss.NewStyle().Foreground(t.Orange)
		b.WriteString("\n")
		b.WriteString(warn.Render("  " + loginErrorText(a.loginErr)))
	}
	return b.String()
}

func loginErrorText(err error) string {
	if errors.Is(err, apperr.ErrAuth) {
		return "Invalid email or password."
	}
	if ve, ok := apperr.AsValidation(err); ok && len(ve.Fields) > 0 {
		return ve.Fields[0].Field + ": " + ve.Fields[0].Message
	}
	return err.Error()
}

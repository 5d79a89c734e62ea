package cmd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func validURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("want an absolute URL like http://localhost:3000/api")
	}
	return nil
}

func validDuration(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("want a duration like 30s or 5m")
	}
	return nil
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themes = append(themes, huh.NewOption(t.Name, t.Name))
	}

	fmt.Println()
	fmt.Println("  Welcome to tally!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Finance API base URL").
				Description("Where the finance server lives.").
				Value(&cfg.API.BaseURL).
				Validate(validURL),
			huh.NewInput().
				Title("Cache freshness").
				Description("How long a read is reused before refetching.").
				Value(&cfg.Cache.FreshFor).
				Validate(validDuration),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&cfg.Appearance.Theme),
			huh.NewSelect[string]().
				Title("Log level").
				Options(
					huh.NewOption("warn", "warn"),
					huh.NewOption("info", "info"),
					huh.NewOption("debug", "debug"),
					huh.NewOption("error", "error"),
				).
				Value(&cfg.Logging.Level),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Budget watcher interval").
				Value(&cfg.Daemon.Interval).
				Validate(validDuration),
			huh.NewInput().
				Title("RabbitMQ URL").
				Description("Optional. The daemon publishes budget alerts here.").
				Value(&cfg.Daemon.AMQPURL),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Next: `tally register` or `tally login`.")
	fmt.Println()

	return nil
}

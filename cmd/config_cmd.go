package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Printf("  Database:    %s\n", config.DBPath())
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("    Timeout:  %s\n", cfg.RequestTimeout())
	fmt.Println()

	fmt.Println("  [Cache]")
	fmt.Printf("    Fresh for: %s\n", cfg.CacheFreshFor())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Logging]")
	fmt.Printf("    Level:  %s\n", cfg.Logging.Level)
	fmt.Printf("    Format: %s\n", cfg.Logging.Format)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Interval: %s\n", cfg.DaemonInterval())
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	if cfg.Daemon.AMQPURL != "" {
		fmt.Printf("    AMQP:     %s\n", maskURL(cfg.Daemon.AMQPURL))
		fmt.Printf("    Exchange: %s  Queue: %s\n", cfg.Daemon.Exchange, cfg.Daemon.Queue)
	} else {
		fmt.Println("    AMQP:     not configured")
	}
	fmt.Println()

	fmt.Println("  Run `tally setup` to reconfigure.")
	return nil
}

// maskURL hides the password of a URL with credentials.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "****"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

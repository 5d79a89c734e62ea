// Package cmd implements the tally CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/tally/internal/api"
	"github.com/theirongolddev/tally/internal/apperr"
	"github.com/theirongolddev/tally/internal/config"
	"github.com/theirongolddev/tally/internal/logger"
	"github.com/theirongolddev/tally/internal/query"
	"github.com/theirongolddev/tally/internal/service"
	"github.com/theirongolddev/tally/internal/session"
	"github.com/theirongolddev/tally/internal/store"
)

var (
	flagAPIURL  string
	flagVerbose bool
	flagQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:           "tally",
	Short:         "Personal finance from the terminal",
	Long:          "Track income, expenses, categories and monthly budgets against your finance server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummary,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initLogging()
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		logger.Sync()
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Finance API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

func initLogging() error {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	level := cfg.Logging.Level
	if flagVerbose {
		level = "debug"
	}
	return logger.Init(level, cfg.Logging.Format)
}

// app is the wired object graph one command invocation runs against.
type app struct {
	cfg     config.Config
	store   *store.Store
	client  *api.Client
	session *session.Session
	svc     *service.Service
}

// openApp loads config, opens the local store and restores any persisted
// session. Callers must Close the result.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}

	st, err := store.Open(config.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, api.WithTimeout(cfg.RequestTimeout()))
	sess := session.New(st, client)
	client.SetTokenSource(sess)

	restoreCtx, cancel := context.WithTimeout(ctx, cfg.RequestTimeout())
	defer cancel()
	sess.Restore(restoreCtx)

	return &app{
		cfg:     cfg,
		store:   st,
		client:  client,
		session: sess,
		svc:     service.New(client, query.New(cfg.CacheFreshFor())),
	}, nil
}

// openAuthedApp is openApp for commands that need a logged-in user.
func openAuthedApp(ctx context.Context) (*app, error) {
	a, err := openApp(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.session.Require(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Get().Warnw("closing store", "error", err)
	}
}

// describeError turns typed errors into a message a user can act on.
func describeError(err error) string {
	if errors.Is(err, apperr.ErrNotAuthenticated) {
		return "  Not logged in. Run `tally login` first."
	}
	if errors.Is(err, apperr.ErrSystemCategory) {
		return "  " + err.Error()
	}
	if ve, ok := apperr.AsValidation(err); ok {
		msg := "  Invalid input:"
		for _, f := range ve.Fields {
			msg += fmt.Sprintf("\n    %s: %s", f.Field, f.Message)
		}
		if len(ve.Fields) == 0 {
			msg += " " + ve.Error()
		}
		return msg
	}
	if apiErr, ok := apperr.AsAPI(err); ok {
		msg := fmt.Sprintf("  Server rejected the request (%d): %s", apiErr.Status, apiErr.Message)
		for _, f := range apiErr.FieldErrors {
			msg += fmt.Sprintf("\n    %s: %s", f.Field, f.Message)
		}
		if errors.Is(err, apperr.ErrAuth) && apiErr.Status == 401 {
			msg += "\n  Your session may have expired. Run `tally login`."
		}
		return msg
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "  The server did not respond in time."
	}
	return "  Error: " + err.Error()
}

// commandContext bounds a one-shot command.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}

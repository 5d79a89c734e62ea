// Package config loads and saves tally settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL    = "TALLY_API_URL"
	EnvLogLevel  = "TALLY_LOG_LEVEL"
	EnvAMQPURL   = "TALLY_AMQP_URL"
	EnvFreshFor  = "TALLY_CACHE_FRESH_FOR"
	EnvConfigDir = "TALLY_CONFIG_DIR"
)

// Config holds all tally configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Cache      CacheConfig      `toml:"cache"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    LoggingConfig    `toml:"logging"`
	Daemon     DaemonConfig     `toml:"daemon"`
	TUI        TUIConfig        `toml:"tui"`
}

// APIConfig points at the finance REST service.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// CacheConfig controls the in-process query cache.
type CacheConfig struct {
	FreshFor string `toml:"fresh_for"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LoggingConfig holds zap settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DaemonConfig holds budget alert watcher settings.
type DaemonConfig struct {
	Interval string `toml:"interval"`
	Addr     string `toml:"addr"`
	AMQPURL  string `toml:"amqp_url,omitempty"`
	Exchange string `toml:"exchange"`
	Queue    string `toml:"queue"`
}

// TUIConfig holds dashboard refresh settings.
type TUIConfig struct {
	AutoRefresh     bool   `toml:"auto_refresh"`
	RefreshInterval string `toml:"refresh_interval"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: "10s",
		},
		Cache: CacheConfig{
			FreshFor: "30s",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Daemon: DaemonConfig{
			Interval: "5m",
			Addr:     "127.0.0.1:8787",
			Exchange: "tally.alerts",
			Queue:    "tally.budget_alerts",
		},
		TUI: TUIConfig{
			RefreshInterval: "60s",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tally")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tally")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the local database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "tally")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tally")
}

// DBPath returns the path of the local sqlite database.
func DBPath() string {
	return filepath.Join(DataDir(), "tally.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// A .env file in the working directory or the config directory is loaded
// first; variables already set in the environment win.
func Load() (Config, error) {
	loadDotEnv()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// RequestTimeout is the per-request HTTP timeout.
func (c Config) RequestTimeout() time.Duration {
	return parseDuration(c.API.Timeout, 10*time.Second)
}

// CacheFreshFor is how long a cached read is served without a network call.
func (c Config) CacheFreshFor() time.Duration {
	return parseDuration(c.Cache.FreshFor, 30*time.Second)
}

// DaemonInterval is the alert polling interval.
func (c Config) DaemonInterval() time.Duration {
	d := parseDuration(c.Daemon.Interval, 5*time.Minute)
	if d < 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

// TUIRefreshInterval is the dashboard auto-refresh period, at least 10s.
func (c Config) TUIRefreshInterval() time.Duration {
	d := parseDuration(c.TUI.RefreshInterval, time.Minute)
	if d < 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

func loadDotEnv() {
	for _, p := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

func applyEnv(cfg *Config) {
	if v := getEnv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getEnv(EnvLogLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := getEnv(EnvAMQPURL); v != "" {
		cfg.Daemon.AMQPURL = v
	}
	if v := getEnv(EnvFreshFor); v != "" {
		cfg.Cache.FreshFor = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

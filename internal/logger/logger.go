// Package logger provides structured logging using Zap.
package logger

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	sugar *zap.SugaredLogger
)

// Init replaces the global logger. Level is a zap level name ("debug",
// "info", "warn", "error"). Format "json" selects the production encoder;
// anything else uses the console encoder. Output always goes to stderr so
// command output on stdout stays clean.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	base, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}

	mu.Lock()
	sugar = base.Sugar()
	mu.Unlock()
	return nil
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a warn-level console logger.
func Get() *zap.SugaredLogger {
	mu.RLock()
	s := sugar
	mu.RUnlock()
	if s != nil {
		return s
	}
	if err := Init("warn", "console"); err != nil {
		return zap.NewNop().Sugar()
	}
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Named returns a child logger for one component.
func Named(component string) *zap.SugaredLogger {
	return Get().Named(component)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	if sugar != nil {
		_ = sugar.Sync()
	}
}

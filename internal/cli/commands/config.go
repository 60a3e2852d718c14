// Package commands implements the scribe subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/scribe-term/scribe/internal/config"
	"github.com/scribe-term/scribe/internal/state"
)

// cfg is set by the root command's PersistentPreRunE before any RunE fires.
var cfg *config.Config

// SetConfig stores the loaded configuration for the subcommands.
func SetConfig(c *config.Config) { cfg = c }

func getConfig() *config.Config {
	if cfg == nil {
		// Only reachable from tests driving a command directly.
		return &config.Config{
			Delimiter: config.DefaultDelimiter,
			LogLevel:  config.DefaultLogLevel,
			Kernel: config.KernelConfig{
				Precedence:          config.DefaultPrecedence(),
				StartTimeoutSeconds: config.DefaultStartTimeout,
			},
		}
	}
	return cfg
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openLogger returns a structured logger writing to the configured file.
// The terminal belongs to the UI, so a broken log path degrades to discard
// rather than polluting stderr.
func openLogger(c *config.Config) (*slog.Logger, func()) {
	level := parseLevel(c.LogLevel)
	if c.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(c.LogFile), 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }
}

// openState opens the state store; a failure is reported but not fatal,
// since the store only holds comfort data.
func openState(c *config.Config, logger *slog.Logger) *state.Store {
	if c.StatePath == "" {
		return nil
	}
	st, err := state.Open(c.StatePath)
	if err != nil {
		logger.Warn("state store unavailable", "path", c.StatePath, "error", err)
		return nil
	}
	return st
}

// loadNotebook reads the notebook file. A missing file yields an empty
// document so `scribe new.py` starts a fresh notebook.
func loadNotebook(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read notebook: %w", err)
	}
	return string(data), nil
}

// Package config loads scribe's configuration. Precedence, highest to
// lowest: flags > environment > config file > defaults.
package config

import (
	"fmt"
	"strings"
)

// Interpreter resolution source names, in the order tried by default.
const (
	SourceFlag       = "flag"
	SourceRemembered = "remembered"
	SourceShebang    = "shebang"
	SourceDiscovered = "discovered"
)

// KernelConfig controls interpreter selection and launch.
type KernelConfig struct {
	// Interpreter pins an interpreter path, skipping discovery.
	Interpreter string `koanf:"interpreter"`
	// Precedence orders the resolution sources tried for a notebook.
	Precedence []string `koanf:"precedence"`
	// StartTimeoutSeconds bounds launch plus handshake.
	StartTimeoutSeconds int `koanf:"start_timeout_seconds"`
}

// CompletionConfig tunes the completion engine.
type CompletionConfig struct {
	// SQLPatterns adds call spellings whose string argument is treated as
	// SQL, e.g. "run_query" or ".fetch_df".
	SQLPatterns []string `koanf:"sql_patterns"`
}

// Config is the loaded program configuration.
type Config struct {
	// Delimiter is the cell delimiter token, matched at line starts.
	Delimiter string `koanf:"delimiter"`
	// StatePath is the sqlite file remembering per-notebook choices.
	StatePath string `koanf:"state_path"`
	LogLevel  string `koanf:"log_level"`
	// LogFile receives structured logs; the terminal is owned by the UI.
	LogFile string `koanf:"log_file"`

	Kernel     KernelConfig     `koanf:"kernel"`
	Completion CompletionConfig `koanf:"completion"`

	// ConfigFileUsed is the file actually loaded, empty when none.
	ConfigFileUsed string `koanf:"-"`
}

var knownSources = map[string]bool{
	SourceFlag:       true,
	SourceRemembered: true,
	SourceShebang:    true,
	SourceDiscovered: true,
}

// Validate rejects values that would misbehave silently later.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Delimiter) == "" {
		return fmt.Errorf("delimiter must not be blank")
	}
	for _, src := range c.Kernel.Precedence {
		if !knownSources[src] {
			return fmt.Errorf("unknown interpreter source %q (valid: %s, %s, %s, %s)",
				src, SourceFlag, SourceRemembered, SourceShebang, SourceDiscovered)
		}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

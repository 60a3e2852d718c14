package config

import (
	"os"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultDelimiter    = "# %%"
	DefaultLogLevel     = "info"
	DefaultStartTimeout = 10
)

// DefaultPrecedence returns the interpreter resolution order used when the
// config does not override it.
func DefaultPrecedence() []string {
	return []string{SourceFlag, SourceRemembered, SourceShebang, SourceDiscovered}
}

// dataDir is where state and logs live when not configured explicitly.
func dataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "scribe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "scribe")
}

// DefaultStatePath returns the default sqlite state file location.
func DefaultStatePath() string {
	return filepath.Join(dataDir(), "state.db")
}

// DefaultLogFile returns the default log destination.
func DefaultLogFile() string {
	return filepath.Join(dataDir(), "scribe.log")
}

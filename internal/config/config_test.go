package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDelimiter, cfg.Delimiter)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultPrecedence(), cfg.Kernel.Precedence)
	assert.Equal(t, DefaultStartTimeout, cfg.Kernel.StartTimeoutSeconds)
	assert.Empty(t, cfg.Kernel.Interpreter)
	assert.Empty(t, cfg.Completion.SQLPatterns)
	assert.Empty(t, cfg.ConfigFileUsed)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	content := `
delimiter: "## cell"
log_level: debug
kernel:
  interpreter: /usr/bin/python3
  precedence: [flag, shebang]
completion:
  sql_patterns: [run_query, .fetch_df]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load("", dir, nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFileUsed)
	assert.Equal(t, "## cell", cfg.Delimiter)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/usr/bin/python3", cfg.Kernel.Interpreter)
	assert.Equal(t, []string{SourceFlag, SourceShebang}, cfg.Kernel.Precedence)
	assert.Equal(t, []string{"run_query", ".fetch_df"}, cfg.Completion.SQLPatterns)
}

func TestLoadFindsConfigUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(root, ConfigFileNameAlt)
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\n"), 0o644))

	cfg, err := Load("", nested, nil)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigFileUsed)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("log_level: debug\nkernel:\n  interpreter: /from/file\n"), 0o644))

	t.Setenv("SCRIBE_LOG_LEVEL", "error")
	t.Setenv("SCRIBE_KERNEL__INTERPRETER", "/from/env")
	t.Setenv("SCRIBE_COMPLETION__SQL_PATTERNS", "run_query,.fetch_df")

	cfg, err := Load("", dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "/from/env", cfg.Kernel.Interpreter)
	assert.Equal(t, []string{"run_query", ".fetch_df"}, cfg.Completion.SQLPatterns)
}

func TestLoadFlagsOverrideEverything(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("delimiter: '## cell'\n"), 0o644))
	t.Setenv("SCRIBE_DELIMITER", "## env")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("delimiter", DefaultDelimiter, "")
	flags.String("interpreter", "", "")
	flags.String("state", "", "")
	require.NoError(t, flags.Parse([]string{
		"--delimiter", "# cell:",
		"--interpreter", "/from/flag",
		"--state", "/tmp/state.db",
	}))

	cfg, err := Load("", dir, flags)
	require.NoError(t, err)
	assert.Equal(t, "# cell:", cfg.Delimiter)
	assert.Equal(t, "/from/flag", cfg.Kernel.Interpreter)
	assert.Equal(t, "/tmp/state.db", cfg.StatePath)
}

func TestLoadUnchangedFlagsIgnored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName),
		[]byte("log_level: warn\n"), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", DefaultLogLevel, "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", dir, flags)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, "default flag value must not mask the file")
}

func TestLoadExplicitConfigMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir(), nil)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "blank delimiter",
			mutate:  func(c *Config) { c.Delimiter = "   " },
			wantErr: "delimiter",
		},
		{
			name:    "unknown source",
			mutate:  func(c *Config) { c.Kernel.Precedence = []string{"flag", "oracle"} },
			wantErr: "unknown interpreter source",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: "unknown log level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				Delimiter: DefaultDelimiter,
				LogLevel:  DefaultLogLevel,
				Kernel:    KernelConfig{Precedence: DefaultPrecedence()},
			}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

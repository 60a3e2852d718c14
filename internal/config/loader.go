package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names tried in order.
const (
	ConfigFileName    = "scribe.yaml"
	ConfigFileNameAlt = "scribe.yml"
)

// maxUpwardSearchLevels limits the upward directory walk for a config file.
const maxUpwardSearchLevels = 10

// envPrefix is stripped from environment variables; a double underscore
// separates nesting, so SCRIBE_KERNEL__INTERPRETER maps to
// kernel.interpreter.
const envPrefix = "SCRIBE_"

// flagKeyOverrides bridges short flag names to their config keys.
var flagKeyOverrides = map[string]string{
	"state":        "state_path",
	"interpreter":  "kernel.interpreter",
	"sql-patterns": "completion.sql_patterns",
}

// configFileIn returns the config file inside dir, or "".
func configFileIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findConfigFile resolves the config file to load. Priority: explicit path,
// upward walk from startDir, then the user config directory.
func findConfigFile(explicit, startDir string) string {
	if explicit != "" {
		return explicit
	}
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if found := configFileIn(dir); found != "" {
			return found
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	if userDir, err := os.UserConfigDir(); err == nil {
		return configFileIn(filepath.Join(userDir, "scribe"))
	}
	return ""
}

// Load builds the configuration for a run started in startDir. cfgFile, when
// non-empty, is an explicit --config path and missing-file errors are fatal;
// otherwise a missing config file is not an error. flags may be nil.
func Load(cfgFile, startDir string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"delimiter":                    DefaultDelimiter,
		"state_path":                   DefaultStatePath(),
		"log_level":                    DefaultLogLevel,
		"log_file":                     DefaultLogFile(),
		"kernel.precedence":            DefaultPrecedence(),
		"kernel.start_timeout_seconds": DefaultStartTimeout,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configFileUsed := findConfigFile(cfgFile, startDir)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			if cfgFile == "" && os.IsNotExist(err) {
				configFileUsed = ""
			} else {
				return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
			}
		}
	}

	// SCRIBE_LOG_LEVEL -> log_level, SCRIBE_KERNEL__INTERPRETER -> kernel.interpreter
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			if key, ok := flagKeyOverrides[f.Name]; ok {
				return key, posflag.FlagVal(flags, f)
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName: "koanf",
			Result:  &cfg,
			// "a,b" is accepted where a list is expected, for env vars.
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.ConfigFileUsed = configFileUsed

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

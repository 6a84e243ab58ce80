package config

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	intconfig "github.com/leapstack-labs/leapcat/internal/config"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// envPrefix is the prefix of environment variables read by the loader.
const envPrefix = "LEAPCAT_"

// sections are the nested config keys reachable from environment variables:
// LEAPCAT_TARGET_PASSWORD -> target.password.
var sections = []string{"target", "ddl"}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Directory of an explicit --config file
//  2. Search upward from CWD for leapcat.yaml
//  3. Current working directory
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		return "."
	}
	if root := intconfig.FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) || path == ":memory:" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// envKey maps LEAPCAT_STATE_PATH to state_path and LEAPCAT_TARGET_HOST to
// target.host.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	return LoadConfigWithTarget(cfgFile, "", flags)
}

// LoadConfigWithTarget loads configuration with an optional environment
// override. The environment's target and ddl sections are merged over the
// base ones.
func LoadConfigWithTarget(cfgFile string, targetOverride string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// The state path flag is relative to CWD, not to the project root.
	var flagStatePath string
	if flags != nil && flags.Changed("state") {
		if v, _ := flags.GetString("state"); v != "" {
			flagStatePath, _ = filepath.Abs(v)
		}
	}

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"state_path":  DefaultStateFile,
		"environment": DefaultEnv,
		"verbose":     false,
		"log_level":   DefaultLogLevel,
		"output":      DefaultOutput,
		"ddl.format":  DefaultDDLFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	if cfgFile == "" {
		cfgFile = intconfig.FindConfigFile(projectRoot)
	}
	configFileUsed = cfgFile
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (LEAPCAT_ prefix)
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "state":
				return "state_path", posflag.FlagVal(flags, f)
			case "database", "schema":
				return "target." + key, posflag.FlagVal(flags, f)
			case "config", "target":
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve paths against the project root
	cfg.ProjectRoot = projectRoot
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	} else {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	envForTarget := cfg.Environment
	if targetOverride != "" {
		envForTarget = targetOverride
	}
	if envForTarget != "" && cfg.Environments != nil {
		if envCfg, ok := cfg.Environments[envForTarget]; ok {
			if envCfg.Target != nil {
				cfg.Target = MergeTargetConfig(cfg.Target, envCfg.Target)
			}
			if envCfg.DDL != nil {
				cfg.DDL = MergeDDLConfig(cfg.DDL, envCfg.DDL)
			}
		}
	}

	// Initialize default target if not specified
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{Type: "duckdb"}
	}
	if cfg.DDL == nil {
		cfg.DDL = &DDLConfig{Format: DefaultDDLFormat}
	}

	expandTargetEnvVars(cfg.Target)
	intconfig.ApplyTargetDefaults(cfg.Target)

	if strings.EqualFold(cfg.Target.Type, "duckdb") {
		cfg.Target.Database = resolvePathRelativeTo(cfg.Target.Database, projectRoot)
	}

	if err := intconfig.ValidateTarget(cfg.Target); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig or LoadConfigWithTarget is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() any {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvVars expands ${VAR} and ${VAR:-default}. An unset variable without
// a default is left as written so the failure names it.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(m[1]); ok {
			return val
		}
		if strings.Contains(match, ":-") {
			return m[2]
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	for key, v := range t.Options {
		t.Options[key] = expandEnvVars(v)
	}
}

// MergeTargetConfig merges two target configs, with override taking precedence.
func MergeTargetConfig(base, override *TargetConfig) *TargetConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base
	merged.Options = make(map[string]string, len(base.Options)+len(override.Options))
	maps.Copy(merged.Options, base.Options)
	maps.Copy(merged.Options, override.Options)
	merged.Params = make(map[string]any, len(base.Params)+len(override.Params))
	maps.Copy(merged.Params, base.Params)
	maps.Copy(merged.Params, override.Params)

	merged.Type = cmp.Or(override.Type, base.Type)
	merged.Database = cmp.Or(override.Database, base.Database)
	merged.Host = cmp.Or(override.Host, base.Host)
	merged.Port = cmp.Or(override.Port, base.Port)
	merged.User = cmp.Or(override.User, base.User)
	merged.Password = cmp.Or(override.Password, base.Password)
	merged.Schema = cmp.Or(override.Schema, base.Schema)
	return &merged
}

// MergeDDLConfig merges two DDL configs. Flags enabled on either side stay
// enabled; excluded principals accumulate.
func MergeDDLConfig(base, override *DDLConfig) *DDLConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	merged := *base
	merged.Format = cmp.Or(override.Format, base.Format)
	merged.StorageClauses = base.StorageClauses || override.StorageClauses
	merged.SkipForeignKeys = base.SkipForeignKeys || override.SkipForeignKeys
	merged.SkipTriggers = base.SkipTriggers || override.SkipTriggers
	merged.SkipIndexes = base.SkipIndexes || override.SkipIndexes
	merged.ExcludedPrincipals = slices.Concat(base.ExcludedPrincipals, override.ExcludedPrincipals)
	return &merged
}

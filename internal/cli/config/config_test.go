package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/oracle"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/postgres"
)

// writeConfig writes a leapcat.yaml into a temp directory and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leapcat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

const envsConfig = `target:
  type: oracle
  host: db.internal
  user: hr
  password: ${TEST_ORA_PASSWORD}
  database: XEPDB1
ddl:
  format: compact
  excluded_principals: [AUDITOR]
environments:
  prod:
    target:
      host: db.prod
      schema: HR_PROD
    ddl:
      skip_triggers: true
      excluded_principals: [BATCH]
`

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_ONE", "value_one")
	t.Setenv("TEST_VAR_TWO", "value_two")
	t.Setenv("TEST_VAR_EMPTY", "")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single variable", input: "${TEST_VAR_ONE}", expected: "value_one"},
		{name: "multiple variables", input: "${TEST_VAR_ONE}/${TEST_VAR_TWO}", expected: "value_one/value_two"},
		{name: "unset variable stays as-is", input: "${UNSET_VARIABLE}", expected: "${UNSET_VARIABLE}"},
		{name: "no variables", input: "plain string", expected: "plain string"},
		{name: "empty string", input: "", expected: ""},
		{name: "mixed set and unset", input: "${TEST_VAR_ONE}:${UNSET_VAR}", expected: "value_one:${UNSET_VAR}"},
		{name: "default for unset variable", input: "${UNSET_VAR:-localhost}", expected: "localhost"},
		{name: "empty default", input: "x${UNSET_VAR:-}y", expected: "xy"},
		{name: "default ignored when set", input: "${TEST_VAR_ONE:-other}", expected: "value_one"},
		{name: "set but empty wins over default", input: "${TEST_VAR_EMPTY:-other}", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandEnvVars(tt.input))
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"LEAPCAT_STATE_PATH", "state_path"},
		{"LEAPCAT_LOG_LEVEL", "log_level"},
		{"LEAPCAT_TARGET_PASSWORD", "target.password"},
		{"LEAPCAT_DDL_SKIP_INDEXES", "ddl.skip_indexes"},
		{"LEAPCAT_OUTPUT", "output"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}

func TestMergeTargetConfig(t *testing.T) {
	t.Run("nil base returns override", func(t *testing.T) {
		override := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, override, MergeTargetConfig(nil, override))
	})

	t.Run("nil override returns base", func(t *testing.T) {
		base := &TargetConfig{Type: "duckdb", Database: "test.db"}
		assert.Equal(t, base, MergeTargetConfig(base, nil))
	})

	t.Run("override replaces base fields", func(t *testing.T) {
		base := &TargetConfig{Type: "postgres", Database: "app", Schema: "public", Host: "localhost"}
		override := &TargetConfig{Database: "reporting", Schema: "sales"}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, "postgres", result.Type)
		assert.Equal(t, "reporting", result.Database)
		assert.Equal(t, "sales", result.Schema)
		assert.Equal(t, "localhost", result.Host)
		assert.Equal(t, "app", base.Database, "base must not be modified")
	})

	t.Run("options are merged", func(t *testing.T) {
		base := &TargetConfig{Options: map[string]string{"key1": "base1", "key2": "base2"}}
		override := &TargetConfig{Options: map[string]string{"key2": "override2", "key3": "override3"}}

		result := MergeTargetConfig(base, override)

		assert.Equal(t, map[string]string{"key1": "base1", "key2": "override2", "key3": "override3"}, result.Options)
	})
}

func TestMergeDDLConfig(t *testing.T) {
	base := &DDLConfig{Format: "compact", SkipIndexes: true, ExcludedPrincipals: []string{"A"}}
	override := &DDLConfig{SkipTriggers: true, ExcludedPrincipals: []string{"B"}}

	merged := MergeDDLConfig(base, override)
	assert.Equal(t, &DDLConfig{
		Format:             "compact",
		SkipIndexes:        true,
		SkipTriggers:       true,
		ExcludedPrincipals: []string{"A", "B"},
	}, merged)
	assert.Same(t, base, MergeDDLConfig(base, nil))
}

func TestLoadConfigWithTarget(t *testing.T) {
	t.Setenv("TEST_ORA_PASSWORD", "s3cret")

	t.Run("base target", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(writeConfig(t, envsConfig), "", nil)
		require.NoError(t, err)

		assert.Equal(t, "oracle", cfg.Target.Type)
		assert.Equal(t, "db.internal", cfg.Target.Host)
		assert.Equal(t, 1521, cfg.Target.Port)
		assert.Equal(t, "HR", cfg.Target.Schema)
		assert.Equal(t, "s3cret", cfg.Target.Password)
		assert.Equal(t, "compact", cfg.DDL.Format)
		assert.Equal(t, []string{"AUDITOR"}, cfg.DDL.ExcludedPrincipals)
		assert.Same(t, cfg, GetCurrentConfig())
	})

	t.Run("environment override", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(writeConfig(t, envsConfig), "prod", nil)
		require.NoError(t, err)

		assert.Equal(t, "db.prod", cfg.Target.Host)
		assert.Equal(t, "HR_PROD", cfg.Target.Schema)
		assert.Equal(t, "hr", cfg.Target.User)
		assert.True(t, cfg.DDL.SkipTriggers)
		assert.Equal(t, []string{"AUDITOR", "BATCH"}, cfg.DDL.ExcludedPrincipals)
	})

	t.Run("nonexistent environment uses base target", func(t *testing.T) {
		ResetConfig()
		cfg, err := LoadConfigWithTarget(writeConfig(t, envsConfig), "nonexistent", nil)
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Target.Host)
	})

	t.Run("defaults", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, "target:\n  type: duckdb\n")
		cfg, err := LoadConfigWithTarget(path, "", nil)
		require.NoError(t, err)

		assert.Equal(t, "auto", cfg.OutputFormat)
		assert.Equal(t, "default", cfg.DDL.Format)
		assert.Equal(t, "main", cfg.Target.Schema)
		assert.Equal(t, filepath.Join(filepath.Dir(path), DefaultStateFile), cfg.StatePath)
		assert.Equal(t, path, GetConfigFileUsed())
	})

	t.Run("relative duckdb path resolves against the config directory", func(t *testing.T) {
		ResetConfig()
		path := writeConfig(t, "target:\n  type: duckdb\n  database: cat.duckdb\n")
		cfg, err := LoadConfigWithTarget(path, "", nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "cat.duckdb"), cfg.Target.Database)
	})

	t.Run("unknown type", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(writeConfig(t, "target:\n  type: mysql\n"), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid target configuration")
		assert.Contains(t, err.Error(), "mysql")
	})

	t.Run("invalid output", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(writeConfig(t, "output: toml\ntarget:\n  type: duckdb\n"), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown output format")
	})

	t.Run("invalid ddl format", func(t *testing.T) {
		ResetConfig()
		_, err := LoadConfigWithTarget(writeConfig(t, "ddl:\n  format: huge\ntarget:\n  type: duckdb\n"), "", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown DDL format")
	})
}

func TestLoadConfigWithTarget_Precedence(t *testing.T) {
	const content = "output: text\ntarget:\n  type: duckdb\n  schema: from_file\n"

	t.Run("env overrides file", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPCAT_TARGET_SCHEMA", "from_env")
		cfg, err := LoadConfigWithTarget(writeConfig(t, content), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Target.Schema)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		ResetConfig()
		t.Setenv("LEAPCAT_TARGET_SCHEMA", "from_env")
		t.Setenv("LEAPCAT_OUTPUT", "markdown")

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("schema", "", "")
		flags.String("output", "", "")
		require.NoError(t, flags.Set("schema", "from_flag"))

		cfg, err := LoadConfigWithTarget(writeConfig(t, content), "", flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Target.Schema)
		assert.Equal(t, "markdown", cfg.OutputFormat, "unset flag must not override env")
	})

	t.Run("state flag is relative to the working directory", func(t *testing.T) {
		ResetConfig()
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("state", "", "")
		require.NoError(t, flags.Set("state", "history.db"))

		cfg, err := LoadConfigWithTarget(writeConfig(t, content), "", flags)
		require.NoError(t, err)
		want, _ := filepath.Abs("history.db")
		assert.Equal(t, want, cfg.StatePath)
	})
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    slog.Level
		wantErr bool
	}{
		{name: "default", cfg: Config{}, want: slog.LevelInfo},
		{name: "configured", cfg: Config{LogLevel: "warn"}, want: slog.LevelWarn},
		{name: "verbose wins", cfg: Config{LogLevel: "error", Verbose: true}, want: slog.LevelDebug},
		{name: "invalid", cfg: Config{LogLevel: "chatty"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.Level()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

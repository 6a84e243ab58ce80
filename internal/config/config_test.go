package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	// Import adapter packages to ensure adapters are registered via init()
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/oracle"
	_ "github.com/leapstack-labs/leapcat/pkg/adapters/postgres"
)

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name      string
		target    *TargetConfig
		errSubstr string
	}{
		{name: "nil target", target: nil, errSubstr: "target is required"},
		{name: "empty type", target: &TargetConfig{}, errSubstr: "target type is required"},
		{name: "unknown type", target: &TargetConfig{Type: "mysql"}, errSubstr: "unknown adapter type"},
		{name: "duckdb in memory", target: &TargetConfig{Type: "duckdb"}},
		{name: "duckdb uppercase", target: &TargetConfig{Type: "DuckDB"}},
		{name: "alias gets postgres checks", target: &TargetConfig{Type: "pg"}, errSubstr: "postgres target requires database"},
		{
			name:      "postgres without database",
			target:    &TargetConfig{Type: "postgres", User: "app"},
			errSubstr: "requires database",
		},
		{
			name:      "postgres without user",
			target:    &TargetConfig{Type: "postgres", Database: "app"},
			errSubstr: "requires user",
		},
		{name: "postgres", target: &TargetConfig{Type: "postgres", Database: "app", User: "app"}},
		{
			name:      "oracle without service",
			target:    &TargetConfig{Type: "oracle", User: "hr"},
			errSubstr: "service name",
		},
		{
			name:   "oracle with connect string",
			target: &TargetConfig{Type: "oracle", User: "hr", Options: map[string]string{"connect_string": "db:1521/XE"}},
		},
		{name: "oracle", target: &TargetConfig{Type: "oracle", User: "hr", Database: "XEPDB1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTarget(tt.target)
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestTargetConfig_Validate_ErrorContainsAvailable(t *testing.T) {
	target := TargetConfig{Type: "invalid_db"}
	err := target.Validate()
	require.Error(t, err)

	assert.Contains(t, err.Error(), "oracle", "error should list available adapters")
	assert.Contains(t, err.Error(), "leapcat.yaml", "error should mention config file")
}

func TestApplyTargetDefaults(t *testing.T) {
	tests := []struct {
		name   string
		target TargetConfig
		want   TargetConfig
	}{
		{
			name:   "duckdb",
			target: TargetConfig{Type: "duckdb"},
			want:   TargetConfig{Type: "duckdb", Schema: "main"},
		},
		{
			name:   "postgres",
			target: TargetConfig{Type: "postgres"},
			want:   TargetConfig{Type: "postgres", Schema: "public", Host: "localhost", Port: 5432},
		},
		{
			name:   "oracle uses the user schema",
			target: TargetConfig{Type: "oracle", User: "hr", Host: "db"},
			want:   TargetConfig{Type: "oracle", User: "hr", Schema: "HR", Host: "db", Port: 1521},
		},
		{
			name:   "alias is canonicalized",
			target: TargetConfig{Type: "PostgreSQL"},
			want:   TargetConfig{Type: "postgres", Schema: "public", Host: "localhost", Port: 5432},
		},
		{
			name:   "explicit values kept",
			target: TargetConfig{Type: "postgres", Schema: "sales", Port: 6432, Host: "pg"},
			want:   TargetConfig{Type: "postgres", Schema: "sales", Port: 6432, Host: "pg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := tt.target
			ApplyTargetDefaults(&target)
			assert.Equal(t, tt.want, target)
		})
	}

	ApplyTargetDefaults(nil)
}

func TestTargetConfig_AdapterConfig(t *testing.T) {
	target := &TargetConfig{
		Type:     "Postgres",
		Host:     "pg",
		Port:     5432,
		Database: "app",
		User:     "reader",
		Password: "secret",
		Schema:   "public",
		Options:  map[string]string{"sslmode": "disable"},
	}

	cfg := target.AdapterConfig()
	assert.Equal(t, "postgres", cfg.Type)
	assert.Equal(t, "reader", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "app", cfg.Database)
	assert.Equal(t, "disable", cfg.Options["sslmode"])

	assert.Equal(t, "postgres://pg:5432/app", target.Display())
	assert.Equal(t, "duckdb:cat.db", (&TargetConfig{Type: "duckdb", Database: "cat.db"}).Display())
	assert.Equal(t, "duckdb", (&TargetConfig{Type: "duckdb"}).Display())
}

func TestDDLConfig(t *testing.T) {
	var nilCfg *DDLConfig
	f, err := nilCfg.ParsedFormat()
	require.NoError(t, err)
	assert.Equal(t, ddl.FormatDefault, f)
	assert.Equal(t, ddl.Options{}, nilCfg.Options())

	cfg := &DDLConfig{Format: "FULL", SkipTriggers: true, StorageClauses: true}
	f, err = cfg.ParsedFormat()
	require.NoError(t, err)
	assert.Equal(t, ddl.FormatFull, f)
	assert.Equal(t, ddl.Options{SkipTriggers: true, StorageClauses: true}, cfg.Options())

	_, err = (&DDLConfig{Format: "verbose"}).ParsedFormat()
	assert.Error(t, err)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))

	assert.Empty(t, FindProjectRoot(nested))

	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileNameAlt), []byte("target:\n  type: duckdb\n"), 0600))
	assert.Equal(t, root, FindProjectRoot(nested))
	assert.Equal(t, filepath.Join(root, ConfigFileNameAlt), FindConfigFile(root))
}

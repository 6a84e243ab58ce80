// Package config provides shared configuration types for leapcat.
// This package is decoupled from CLI concerns: it holds the target and DDL
// settings and turns them into adapter and assembler options.
package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
)

// TargetConfig holds database target configuration.
type TargetConfig struct {
	Type string `koanf:"type"` // oracle, postgres, duckdb

	// File path (DuckDB) or database/service name
	Database string `koanf:"database"`

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`

	// Schema listed when a command is given none
	Schema string `koanf:"schema"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`

	// Params holds adapter-specific configuration (e.g., DuckDB extensions, secrets, settings)
	Params map[string]any `koanf:"params"`
}

// Validate checks if the target configuration is valid.
// It uses the adapter registry to determine which adapter types are available.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}

	// Use adapter registry as single source of truth
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return &adapter.UnknownAdapterError{
			Type:      t.Type,
			Available: adapter.ListAdapters(),
		}
	}

	return nil
}

// AdapterConfig converts the target into the adapter connection config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	typ := strings.ToLower(t.Type)
	if name, ok := adapter.Canonical(typ); ok {
		typ = name
	}
	return adapter.Config{
		Type:     typ,
		Path:     t.Database,
		Database: t.Database,
		Schema:   t.Schema,
		Host:     t.Host,
		Port:     t.Port,
		Username: t.User,
		Password: t.Password,
		Options:  t.Options,
		Params:   t.Params,
	}
}

// Display returns a credential-free label for the target, used in dump history.
func (t *TargetConfig) Display() string {
	switch {
	case t.Host != "" && t.Database != "":
		return fmt.Sprintf("%s://%s:%d/%s", strings.ToLower(t.Type), t.Host, t.Port, t.Database)
	case t.Database != "":
		return fmt.Sprintf("%s:%s", strings.ToLower(t.Type), t.Database)
	default:
		return strings.ToLower(t.Type)
	}
}

// DDLConfig holds the defaults applied to DDL generation.
type DDLConfig struct {
	Format             string   `koanf:"format"`
	StorageClauses     bool     `koanf:"storage_clauses"`
	SkipForeignKeys    bool     `koanf:"skip_foreign_keys"`
	SkipTriggers       bool     `koanf:"skip_triggers"`
	SkipIndexes        bool     `koanf:"skip_indexes"`
	ExcludedPrincipals []string `koanf:"excluded_principals"`
}

// ParsedFormat validates the configured format.
func (c *DDLConfig) ParsedFormat() (ddl.Format, error) {
	if c == nil {
		return ddl.FormatDefault, nil
	}
	return ddl.ParseFormat(c.Format)
}

// Options converts the config into assembler options.
func (c *DDLConfig) Options() ddl.Options {
	if c == nil {
		return ddl.Options{}
	}
	return ddl.Options{
		StorageClauses:  c.StorageClauses,
		SkipForeignKeys: c.SkipForeignKeys,
		SkipTriggers:    c.SkipTriggers,
		SkipIndexes:     c.SkipIndexes,
	}
}

// Package config provides configuration management for the leapcat CLI.
//
// This package extends the shared configuration types from internal/config
// with CLI-specific fields and functionality. The shared types are
// re-exported here via type aliases for convenience.
package config

import (
	sharedcfg "github.com/leapstack-labs/leapcat/internal/config"
)

// TargetConfig is an alias for the shared target configuration.
type TargetConfig = sharedcfg.TargetConfig

// DDLConfig is an alias for the shared DDL configuration.
type DDLConfig = sharedcfg.DDLConfig

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string               `koanf:"state_path"`
	Environment  string               `koanf:"environment"`
	Verbose      bool                 `koanf:"verbose"`
	LogLevel     string               `koanf:"log_level"`
	OutputFormat string               `koanf:"output"`
	Target       *TargetConfig        `koanf:"target"`
	DDL          *DDLConfig           `koanf:"ddl"`
	Environments map[string]EnvConfig `koanf:"environments"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// EnvConfig holds environment-specific configuration overrides.
type EnvConfig struct {
	Target *TargetConfig `koanf:"target"`
	DDL    *DDLConfig    `koanf:"ddl"`
}

// Default configuration values - uses shared defaults from internal/config
const (
	DefaultStateFile = sharedcfg.DefaultStateFile
	DefaultOutput    = sharedcfg.DefaultOutput
	DefaultDDLFormat = sharedcfg.DefaultDDLFormat
	DefaultLogLevel  = sharedcfg.DefaultLogLevel
	DefaultEnv       = ""
)

package config

import (
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
)

// Default configuration values.
const (
	DefaultStateFile = ".leapcat/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDDLFormat = "default"
	DefaultLogLevel  = "info"
)

var defaultPorts = map[string]int{
	"postgres": 5432,
	"oracle":   1521,
}

// DefaultSchemaForType returns the default schema for a database type.
// Oracle has none: the connecting user's schema is used instead.
func DefaultSchemaForType(dbType string) string {
	switch strings.ToLower(dbType) {
	case "postgres":
		return "public"
	case "oracle":
		return ""
	default:
		return "main"
	}
}

// ApplyTargetDefaults applies default values to a TargetConfig based on the target type.
func ApplyTargetDefaults(t *TargetConfig) {
	if t == nil {
		return
	}
	if name, ok := adapter.Canonical(t.Type); ok {
		t.Type = name
	}

	// Apply default schema based on type
	if t.Schema == "" {
		t.Schema = DefaultSchemaForType(t.Type)
		if t.Schema == "" {
			t.Schema = strings.ToUpper(t.User)
		}
	}

	// Apply type-specific defaults
	if t.Port == 0 {
		t.Port = defaultPorts[strings.ToLower(t.Type)]
	}
	if t.Host == "" && t.Port != 0 {
		t.Host = "localhost"
	}
}

package config

import (
	"fmt"

	"github.com/leapstack-labs/leapcat/pkg/adapter"
)

// ValidateTarget checks that the target names a registered adapter and carries
// the connection fields that adapter needs.
func ValidateTarget(t *TargetConfig) error {
	if t == nil {
		return fmt.Errorf("target is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	typ, _ := adapter.Canonical(t.Type)
	switch typ {
	case "postgres":
		if t.Database == "" {
			return fmt.Errorf("postgres target requires database")
		}
		if t.User == "" {
			return fmt.Errorf("postgres target requires user")
		}
	case "oracle":
		if t.Database == "" && t.Options["connect_string"] == "" {
			return fmt.Errorf("oracle target requires database (service name) or options.connect_string")
		}
		if t.User == "" {
			return fmt.Errorf("oracle target requires user")
		}
	}
	return nil
}

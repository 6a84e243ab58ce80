package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapcat/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	modes := output.Modes()
	if !slices.Contains(modes, output.Mode(strings.ToLower(c.OutputFormat))) {
		names := make([]string, len(modes))
		for i, m := range modes {
			names[i] = string(m)
		}
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.OutputFormat, strings.Join(names, ", "))
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.DDL.ParsedFormat(); err != nil {
		return err
	}
	return nil
}

// Level returns the log level: debug when verbose, otherwise log_level.
func (c *Config) Level() (slog.Level, error) {
	if c.Verbose {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	name := c.LogLevel
	if name == "" {
		name = DefaultLogLevel
	}
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

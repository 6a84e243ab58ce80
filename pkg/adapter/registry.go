package adapter

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Factory builds an unconnected adapter. A nil logger means discard.
type Factory func(*slog.Logger) Adapter

type registration struct {
	name    string
	factory Factory
}

var (
	registryMu sync.RWMutex
	// registry maps lower-cased names and aliases to their registration.
	registry = make(map[string]registration)
)

// Register adds an adapter factory under name and its aliases, so that
// target.type may use either ("postgresql" for "postgres"). Names are
// case-insensitive. Called by adapter implementations in their init()
// functions.
func Register(name string, factory Factory, aliases ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	reg := registration{name: strings.ToLower(name), factory: factory}
	registry[reg.name] = reg
	for _, alias := range aliases {
		registry[strings.ToLower(alias)] = reg
	}
}

func lookup(name string) (registration, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	reg, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return reg, ok
}

// Get retrieves an adapter factory by name or alias.
func Get(name string) (Factory, bool) {
	reg, ok := lookup(name)
	return reg.factory, ok
}

// Canonical returns the registered name behind a name or alias.
func Canonical(name string) (string, bool) {
	reg, ok := lookup(name)
	return reg.name, ok
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("adapter type not specified")
	}

	reg, ok := lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return reg.factory(logger), nil
}

// ListAdapters returns the registered adapter names, sorted. Aliases are not
// listed.
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var names []string
	for key, reg := range registry {
		if key == reg.name {
			names = append(names, key)
		}
	}
	slices.Sort(names)
	return names
}

// IsRegistered reports whether name or alias refers to an adapter.
func IsRegistered(name string) bool {
	_, ok := lookup(name)
	return ok
}

// UnknownAdapterError is returned when an unknown adapter type is requested.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter type %q\nAvailable adapters: %s\nHint: Check target.type in leapcat.yaml",
		e.Type, strings.Join(e.Available, ", "))
}

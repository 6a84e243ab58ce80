// Package adapter provides the backend adapter contract and registry.
//
// An adapter owns the connection to one backend and supplies everything the
// catalog engine needs to talk to it: the query executor, the dictionary
// requests for catalog population, the DDL requests, the identifier
// normalizer and the predefined type table.
// Concrete adapter implementations are in pkg/adapters/ subdirectories.
package adapter

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/catalog"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ddl"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Config holds configuration for connecting to a backend.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// Adapter defines the interface that all backend adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the backend using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the connection and releases resources.
	Close() error

	// Executor returns the query executor bound to the connection.
	Executor() query.Executor

	// Dictionary returns the catalog population requests.
	Dictionary() catalog.Dictionary

	// DDLDictionary returns the DDL assembly requests.
	DDLDictionary() ddl.Dictionary

	// Normalizer returns the identifier normalizer of the backend.
	Normalizer() ident.Normalizer

	// PredefinedTypes returns the immutable table of built-in types.
	PredefinedTypes() *core.TypeTable

	// DialectName returns the backend name used in logs and output.
	DialectName() string
}

// OpenDatabase builds the catalog root for a connected adapter.
func OpenDatabase(a Adapter, name string, opts catalog.Options) *catalog.Database {
	if opts.Normalizer == nil {
		opts.Normalizer = a.Normalizer()
	}
	if opts.Types == nil {
		opts.Types = a.PredefinedTypes()
	}
	return catalog.NewDatabase(name, a.Executor(), a.Dictionary(), opts)
}

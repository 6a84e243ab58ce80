package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcat/pkg/cache"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Options configures a Database.
type Options struct {
	// Normalizer folds identifiers to cache keys. Defaults to ident.Verbatim.
	Normalizer ident.Normalizer
	// Types is the predefined type table of the backend.
	Types *core.TypeTable
	// BatchChildren loads the columns of every table in one request once the
	// table list is fully cached, instead of one request per table.
	BatchChildren bool
	Logger        *slog.Logger
}

// Database is the root container of the graph.
type Database struct {
	name  string
	exec  query.Executor
	dict  Dictionary
	norm  ident.Normalizer
	types *core.TypeTable
	batch bool

	logger *slog.Logger

	schemas    *cache.ListCache[*Schema]
	principals *cache.ListCache[*Principal]
}

// NewDatabase creates the root of a graph populated through exec and dict.
func NewDatabase(name string, exec query.Executor, dict Dictionary, opts Options) *Database {
	if opts.Normalizer == nil {
		opts.Normalizer = ident.Verbatim{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Types == nil {
		opts.Types = core.NewTypeTable()
	}

	db := &Database{
		name:   name,
		exec:   exec,
		dict:   dict,
		norm:   opts.Normalizer,
		types:  opts.Types,
		batch:  opts.BatchChildren,
		logger: opts.Logger,
	}
	copts := db.cacheOptions()
	db.schemas = cache.NewList("schemas", exec, dict.Schemas, db.fetchSchema, copts)
	db.principals = cache.NewList("principals", exec, dict.Principals, fetchPrincipal, copts)
	return db
}

func (db *Database) cacheOptions(attrs ...any) cache.Options {
	return cache.Options{Normalizer: db.norm, Logger: db.logger.With(attrs...)}
}

// Name returns the database name.
func (db *Database) Name() string { return db.name }

// Kind returns core.KindDatabase.
func (db *Database) Kind() core.Kind { return core.KindDatabase }

// Normalizer returns the identifier normalizer.
func (db *Database) Normalizer() ident.Normalizer { return db.norm }

// Types returns the predefined type table.
func (db *Database) Types() *core.TypeTable { return db.types }

// Logger returns the database logger.
func (db *Database) Logger() *slog.Logger { return db.logger }

// Schemas returns every schema.
func (db *Database) Schemas(ctx context.Context) ([]*Schema, error) {
	return db.schemas.GetAll(ctx)
}

// Schema returns the named schema, or nil when it does not exist.
func (db *Database) Schema(ctx context.Context, name string) (*Schema, error) {
	return db.schemas.Get(ctx, name)
}

// RequireSchema is Schema with a NotFoundError for a missing schema.
func (db *Database) RequireSchema(ctx context.Context, name string) (*Schema, error) {
	s, err := db.Schema(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &core.NotFoundError{Kind: core.KindSchema, Name: name, Container: db.name}
	}
	return s, nil
}

// Principals returns every user and role.
func (db *Database) Principals(ctx context.Context) ([]*Principal, error) {
	return db.principals.GetAll(ctx)
}

// Resolve looks up the object a reference points to.
func (db *Database) Resolve(ctx context.Context, ref Ref) (core.Named, error) {
	if ref.IsZero() {
		return nil, &core.NotFoundError{Kind: ref.Kind}
	}
	if ref.Kind == core.KindSchema {
		return found(db.Schema(ctx, ref.Name))
	}
	s, err := db.RequireSchema(ctx, ref.Schema)
	if err != nil {
		return nil, err
	}
	obj, err := s.Object(ctx, ref.Kind, ref.Name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, &core.NotFoundError{Kind: ref.Kind, Name: ref.Name, Container: "schema " + s.Name()}
	}
	return obj, nil
}

// ResolveType resolves a type name used in a declaration. Predefined types
// take precedence over user-defined types of the schema.
func (db *Database) ResolveType(ctx context.Context, schema, name string) (core.Named, error) {
	if def, ok := db.types.Lookup(name); ok {
		return &BuiltinType{def: def}, nil
	}
	s, err := db.RequireSchema(ctx, schema)
	if err != nil {
		return nil, err
	}
	t, err := s.Type(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolve type %s: %w", core.QualifiedName(schema, name), err)
	}
	if t == nil {
		return nil, &core.NotFoundError{Kind: core.KindType, Name: name, Container: "schema " + s.Name()}
	}
	return t, nil
}

// Refresh drops every cached schema and principal. Schemas handed out
// earlier keep working but no longer share caches with new lookups.
func (db *Database) Refresh() {
	db.schemas.Clear()
	db.principals.Clear()
}

func (db *Database) fetchSchema(_ context.Context, row query.Row) (*Schema, error) {
	name, err := row.String(ColName)
	if err != nil {
		return nil, err
	}
	return newSchema(db, name), nil
}

// BuiltinType is a predefined type of the backend.
type BuiltinType struct {
	def core.PredefinedType
}

// Name returns the type name.
func (t *BuiltinType) Name() string { return t.def.Name }

// Kind returns core.KindType.
func (t *BuiltinType) Kind() core.Kind { return core.KindType }

// Definition returns the table entry.
func (t *BuiltinType) Definition() core.PredefinedType { return t.def }

// found converts a typed lookup result to core.Named without producing a
// non-nil interface around a nil pointer.
func found[T interface {
	comparable
	core.Named
}](obj T, err error) (core.Named, error) {
	var zero T
	if err != nil || obj == zero {
		return nil, err
	}
	return obj, nil
}

func named[T core.Named](objs []T, err error) ([]core.Named, error) {
	if err != nil {
		return nil, err
	}
	out := make([]core.Named, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out, nil
}

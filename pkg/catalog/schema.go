package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapcat/pkg/cache"
	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"golang.org/x/sync/errgroup"
)

// Schema is a container of tables, views, program units and the other
// schema-scoped kinds. Each child kind is backed by its own cache.
type Schema struct {
	db     *Database
	name   string
	logger *slog.Logger

	tables      *cache.StructCache[*Table, *Column]
	views       *cache.StructCache[*View, *Column]
	mviews      *cache.ListCache[*MaterializedView]
	constraints *cache.CompositeCache[*Table, *Constraint, KeyColumn]
	foreignKeys *cache.CompositeCache[*Table, *ForeignKey, KeyColumn]
	indexes     *cache.CompositeCache[*Table, *Index, KeyColumn]
	triggers    *cache.LookupCache[*Trigger]
	sequences   *cache.LookupCache[*Sequence]
	synonyms    *cache.LookupCache[*Synonym]
	types       *cache.StructCache[*DataType, *TypeAttribute]
	packages    *cache.ListCache[*Package]
	dbLinks     *cache.ListCache[*DBLink]
	domains     *cache.ListCache[*Domain]
	operators   *cache.ListCache[*Operator]
}

func newSchema(db *Database, name string) *Schema {
	s := &Schema{db: db, name: name, logger: db.logger.With(slog.String("schema", name))}
	exec, dict := db.exec, db.dict
	list := func(kind core.Kind) func() query.Request {
		return func() query.Request { return dict.List(kind, name) }
	}
	lookup := func(kind core.Kind) func(string) query.Request {
		return func(key string) query.Request { return dict.Lookup(kind, name, key) }
	}
	children := func(parent, child core.Kind) (func() query.Request, func(parent string) query.Request) {
		return func() query.Request { return dict.Children(parent, child, name, "") },
			func(p string) query.Request { return dict.Children(parent, child, name, p) }
	}
	opts := db.cacheOptions(slog.String("schema", name))

	colsAll, colsFor := children(core.KindTable, core.KindColumn)
	s.tables = cache.NewStruct(
		cache.NewLookup("tables", exec, list(core.KindTable), lookup(core.KindTable), s.fetchTable, opts),
		cache.StructConfig[*Table, *Column]{
			ChildParentColumn: ColParent,
			ChildRequestAll:   colsAll,
			ChildRequestFor:   func(t *Table) query.Request { return colsFor(t.name) },
			FetchChild:        func(ctx context.Context, t *Table, row query.Row) (*Column, error) { return fetchColumn(ctx, t, row) },
			LoadAllChildren:   db.batch,
		})

	viewColsAll, viewColsFor := children(core.KindView, core.KindColumn)
	s.views = cache.NewStruct(
		cache.NewLookup("views", exec, list(core.KindView), lookup(core.KindView), s.fetchView, opts),
		cache.StructConfig[*View, *Column]{
			ChildParentColumn: ColParent,
			ChildRequestAll:   viewColsAll,
			ChildRequestFor:   func(v *View) query.Request { return viewColsFor(v.name) },
			FetchChild:        func(ctx context.Context, v *View, row query.Row) (*Column, error) { return fetchColumn(ctx, v, row) },
			LoadAllChildren:   db.batch,
		})

	attrsAll, attrsFor := children(core.KindType, core.KindTypeAttribute)
	s.types = cache.NewStruct(
		cache.NewLookup("types", exec, list(core.KindType), lookup(core.KindType), s.fetchType, opts),
		cache.StructConfig[*DataType, *TypeAttribute]{
			ChildParentColumn: ColParent,
			ChildRequestAll:   attrsAll,
			ChildRequestFor:   func(t *DataType) query.Request { return attrsFor(t.name) },
			FetchChild:        fetchTypeAttribute,
			LoadAllChildren:   db.batch,
		})

	s.constraints = cache.NewComposite(keyConfig("constraints", core.KindConstraint, dict, name, s.fetchConstraint,
		func(c *Constraint, cols []KeyColumn) { c.columns = cols }), exec, s.tables, opts)
	s.foreignKeys = cache.NewComposite(keyConfig("foreign keys", core.KindForeignKey, dict, name, s.fetchForeignKey,
		func(f *ForeignKey, cols []KeyColumn) { f.columns = cols }), exec, s.tables, opts)
	s.indexes = cache.NewComposite(keyConfig("indexes", core.KindIndex, dict, name, s.fetchIndex,
		func(i *Index, cols []KeyColumn) { i.columns = cols }), exec, s.tables, opts)

	s.triggers = cache.NewLookup("triggers", exec, list(core.KindTrigger), lookup(core.KindTrigger), s.fetchTrigger, opts)
	s.sequences = cache.NewLookup("sequences", exec, list(core.KindSequence), lookup(core.KindSequence), s.fetchSequence, opts)
	s.synonyms = cache.NewLookup("synonyms", exec, list(core.KindSynonym), lookup(core.KindSynonym), s.fetchSynonym, opts)
	s.mviews = cache.NewList("materialized views", exec, list(core.KindMaterializedView), s.fetchMaterializedView, opts)
	s.packages = cache.NewList("packages", exec, list(core.KindPackage), s.fetchPackage, opts)
	s.dbLinks = cache.NewList("db links", exec, list(core.KindDBLink), s.fetchDBLink, opts)
	s.domains = cache.NewList("domains", exec, list(core.KindDomain), s.fetchDomain, opts)
	s.operators = cache.NewList("operators", exec, list(core.KindOperator), s.fetchOperator, opts)

	// Dependent caches reference tables by key and must not outlive them.
	s.tables.AddDependent(s.constraints)
	s.tables.AddDependent(s.foreignKeys)
	s.tables.AddDependent(s.indexes)
	s.tables.AddDependent(s.triggers)
	return s
}

func keyConfig[T cache.Object](name string, kind core.Kind, dict Dictionary, schema string,
	fetch func(context.Context, *Table, query.Row) (T, error), attach func(T, []KeyColumn),
) cache.CompositeConfig[*Table, T, KeyColumn] {
	return cache.CompositeConfig[*Table, T, KeyColumn]{
		Name:         name,
		ParentColumn: ColParent,
		ObjectColumn: ColName,
		PackedColumn: ColColumns,
		RequestAll:   func() query.Request { return dict.Children(core.KindTable, kind, schema, "") },
		RequestFor:   func(t *Table) query.Request { return dict.Children(core.KindTable, kind, schema, t.name) },
		FetchObject:  fetch,
		FetchRow:     func(_ context.Context, _ T, row query.Row) (KeyColumn, bool, error) { return fetchKeyColumn(row) },
		FetchPacked: func(_ context.Context, _ T, e cache.PackedEntry) (KeyColumn, error) {
			return KeyColumn{Name: e.Name, Position: e.Position}, nil
		},
		CacheRows: attach,
		Ordinal:   func(k KeyColumn) int { return k.Position },
	}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Kind returns core.KindSchema.
func (s *Schema) Kind() core.Kind { return core.KindSchema }

// Database returns the owning database.
func (s *Schema) Database() *Database { return s.db }

func (s *Schema) key(name string) string { return s.db.norm.Normalize(name) }

// Tables returns every table.
func (s *Schema) Tables(ctx context.Context) ([]*Table, error) { return s.tables.GetAll(ctx) }

// Table returns the named table, or nil.
func (s *Schema) Table(ctx context.Context, name string) (*Table, error) {
	return s.tables.Get(ctx, name)
}

// RequireTable is Table with a NotFoundError for a missing table.
func (s *Schema) RequireTable(ctx context.Context, name string) (*Table, error) {
	t, err := s.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, s.notFound(core.KindTable, name)
	}
	return t, nil
}

// Views returns every view.
func (s *Schema) Views(ctx context.Context) ([]*View, error) { return s.views.GetAll(ctx) }

// View returns the named view, or nil.
func (s *Schema) View(ctx context.Context, name string) (*View, error) { return s.views.Get(ctx, name) }

// MaterializedViews returns every materialized view.
func (s *Schema) MaterializedViews(ctx context.Context) ([]*MaterializedView, error) {
	return s.mviews.GetAll(ctx)
}

// Constraints returns the key and check constraints of every table.
func (s *Schema) Constraints(ctx context.Context) ([]*Constraint, error) {
	return s.constraints.GetAll(ctx)
}

// Constraint returns the named constraint, or nil.
func (s *Schema) Constraint(ctx context.Context, name string) (*Constraint, error) {
	return findByName[*Constraint](s, name)(s.Constraints(ctx))
}

// ForeignKeys returns the foreign keys of every table.
func (s *Schema) ForeignKeys(ctx context.Context) ([]*ForeignKey, error) {
	return s.foreignKeys.GetAll(ctx)
}

// ForeignKey returns the named foreign key, or nil.
func (s *Schema) ForeignKey(ctx context.Context, name string) (*ForeignKey, error) {
	return findByName[*ForeignKey](s, name)(s.ForeignKeys(ctx))
}

// Indexes returns the indexes of every table.
func (s *Schema) Indexes(ctx context.Context) ([]*Index, error) { return s.indexes.GetAll(ctx) }

// Index returns the named index, or nil.
func (s *Schema) Index(ctx context.Context, name string) (*Index, error) {
	return findByName[*Index](s, name)(s.Indexes(ctx))
}

// Triggers returns every trigger.
func (s *Schema) Triggers(ctx context.Context) ([]*Trigger, error) { return s.triggers.GetAll(ctx) }

// Trigger returns the named trigger, or nil.
func (s *Schema) Trigger(ctx context.Context, name string) (*Trigger, error) {
	return s.triggers.Get(ctx, name)
}

// Sequences returns every sequence.
func (s *Schema) Sequences(ctx context.Context) ([]*Sequence, error) { return s.sequences.GetAll(ctx) }

// Sequence returns the named sequence, or nil.
func (s *Schema) Sequence(ctx context.Context, name string) (*Sequence, error) {
	return s.sequences.Get(ctx, name)
}

// Synonyms returns every synonym.
func (s *Schema) Synonyms(ctx context.Context) ([]*Synonym, error) { return s.synonyms.GetAll(ctx) }

// Synonym returns the named synonym, or nil.
func (s *Schema) Synonym(ctx context.Context, name string) (*Synonym, error) {
	return s.synonyms.Get(ctx, name)
}

// Types returns every user-defined type.
func (s *Schema) Types(ctx context.Context) ([]*DataType, error) { return s.types.GetAll(ctx) }

// Type returns the named type, or nil.
func (s *Schema) Type(ctx context.Context, name string) (*DataType, error) {
	return s.types.Get(ctx, name)
}

// Packages returns every package.
func (s *Schema) Packages(ctx context.Context) ([]*Package, error) { return s.packages.GetAll(ctx) }

// Package returns the named package, or nil.
func (s *Schema) Package(ctx context.Context, name string) (*Package, error) {
	return s.packages.Get(ctx, name)
}

// DBLinks returns every database link.
func (s *Schema) DBLinks(ctx context.Context) ([]*DBLink, error) { return s.dbLinks.GetAll(ctx) }

// Domains returns every domain.
func (s *Schema) Domains(ctx context.Context) ([]*Domain, error) { return s.domains.GetAll(ctx) }

// Operators returns every operator.
func (s *Schema) Operators(ctx context.Context) ([]*Operator, error) { return s.operators.GetAll(ctx) }

// Objects lists the objects of one kind.
func (s *Schema) Objects(ctx context.Context, kind core.Kind) ([]core.Named, error) {
	switch kind {
	case core.KindTable:
		return named(s.Tables(ctx))
	case core.KindView:
		return named(s.Views(ctx))
	case core.KindMaterializedView:
		return named(s.MaterializedViews(ctx))
	case core.KindConstraint:
		return named(s.Constraints(ctx))
	case core.KindForeignKey:
		return named(s.ForeignKeys(ctx))
	case core.KindIndex:
		return named(s.Indexes(ctx))
	case core.KindTrigger:
		return named(s.Triggers(ctx))
	case core.KindSequence:
		return named(s.Sequences(ctx))
	case core.KindSynonym:
		return named(s.Synonyms(ctx))
	case core.KindType:
		return named(s.Types(ctx))
	case core.KindPackage:
		return named(s.Packages(ctx))
	case core.KindDBLink:
		return named(s.DBLinks(ctx))
	case core.KindDomain:
		return named(s.Domains(ctx))
	case core.KindOperator:
		return named(s.Operators(ctx))
	default:
		return nil, fmt.Errorf("schema %s can not list %s objects", s.name, kind)
	}
}

// Object returns the named object of kind, or nil. An empty kind searches
// the kinds a synonym may point to.
func (s *Schema) Object(ctx context.Context, kind core.Kind, name string) (core.Named, error) {
	switch kind {
	case core.KindTable:
		return found(s.Table(ctx, name))
	case core.KindView:
		return found(s.View(ctx, name))
	case core.KindMaterializedView:
		return found(findByName[*MaterializedView](s, name)(s.MaterializedViews(ctx)))
	case core.KindConstraint:
		return found(s.Constraint(ctx, name))
	case core.KindForeignKey:
		return found(s.ForeignKey(ctx, name))
	case core.KindIndex:
		return found(s.Index(ctx, name))
	case core.KindTrigger:
		return found(s.Trigger(ctx, name))
	case core.KindSequence:
		return found(s.Sequence(ctx, name))
	case core.KindSynonym:
		return found(s.Synonym(ctx, name))
	case core.KindType:
		return found(s.Type(ctx, name))
	case core.KindPackage:
		return found(s.Package(ctx, name))
	case core.KindDBLink:
		return found(findByName[*DBLink](s, name)(s.DBLinks(ctx)))
	case core.KindDomain:
		return found(findByName[*Domain](s, name)(s.Domains(ctx)))
	case core.KindOperator:
		return found(findByName[*Operator](s, name)(s.Operators(ctx)))
	case "":
		for _, k := range []core.Kind{core.KindTable, core.KindView, core.KindSequence, core.KindPackage, core.KindType, core.KindSynonym} {
			obj, err := s.Object(ctx, k, name)
			if err != nil || obj != nil {
				return obj, err
			}
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("schema %s can not look up %s objects", s.name, kind)
	}
}

// Prefetch populates the caches of several kinds concurrently. The first
// failure cancels the remaining requests and is returned.
func (s *Schema) Prefetch(ctx context.Context, kinds ...core.Kind) error {
	eg, egctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		eg.Go(func() error {
			if _, err := s.Objects(egctx, kind); err != nil {
				return fmt.Errorf("prefetch %s: %w", kind, err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Refresh drops every cache of the schema and the memoized sources of
// cached program units.
func (s *Schema) Refresh() {
	for _, p := range s.packages.Cached() {
		p.source.reset()
	}
	for _, t := range s.types.Cached() {
		t.source.reset()
	}
	s.tables.Clear()
	s.views.Clear()
	s.mviews.Clear()
	s.sequences.Clear()
	s.synonyms.Clear()
	s.types.Clear()
	s.packages.Clear()
	s.dbLinks.Clear()
	s.domains.Clear()
	s.operators.Clear()
}

// Invalidate drops the cache of one kind. Clearing tables also clears the
// constraint, foreign key, index and trigger caches.
func (s *Schema) Invalidate(kind core.Kind) {
	switch kind {
	case core.KindTable:
		s.tables.Clear()
	case core.KindView:
		s.views.Clear()
	case core.KindMaterializedView:
		s.mviews.Clear()
	case core.KindConstraint:
		s.constraints.Clear()
	case core.KindForeignKey:
		s.foreignKeys.Clear()
	case core.KindIndex:
		s.indexes.Clear()
	case core.KindTrigger:
		s.triggers.Clear()
	case core.KindSequence:
		s.sequences.Clear()
	case core.KindSynonym:
		s.synonyms.Clear()
	case core.KindType:
		s.types.Clear()
	case core.KindPackage:
		s.packages.Clear()
	case core.KindDBLink:
		s.dbLinks.Clear()
	case core.KindDomain:
		s.domains.Clear()
	case core.KindOperator:
		s.operators.Clear()
	}
}

// NewTable creates an unpersisted table owned by the schema. It becomes
// visible to lookups once passed to AddTable.
func (s *Schema) NewTable(name string) *Table {
	return &Table{object: object{schema: s, name: name}}
}

// AddTable caches an unpersisted table.
func (s *Schema) AddTable(ctx context.Context, t *Table) error {
	if t.schema != s {
		return fmt.Errorf("table %s belongs to schema %s", t.name, t.schema.Name())
	}
	existing, err := s.Table(ctx, t.name)
	if err != nil {
		return err
	}
	if existing != nil && existing != t {
		return fmt.Errorf("table %s already exists", t.QualifiedName())
	}
	s.tables.CacheObject(t)
	return nil
}

func (s *Schema) fetchSource(ctx context.Context, kind core.Kind, name string) (string, error) {
	req := s.db.dict.Source(kind, s.name, s.key(name))
	if req.Unsupported() {
		return "", nil
	}
	cur, err := s.db.exec.Query(ctx, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = cur.Close() }()
	var lines []string
	for cur.Next() {
		lines = append(lines, cur.SafeString(ColText))
	}
	if err := cur.Err(); err != nil {
		return "", err
	}
	return joinLines(lines), nil
}

func (s *Schema) notFound(kind core.Kind, name string) error {
	return &core.NotFoundError{Kind: kind, Name: name, Container: "schema " + s.name}
}

func findByName[T core.Named](s *Schema, name string) func([]T, error) (T, error) {
	return func(objs []T, err error) (T, error) {
		var zero T
		if err != nil {
			return zero, err
		}
		key := s.key(name)
		for _, o := range objs {
			if s.key(o.Name()) == key {
				return o, nil
			}
		}
		return zero, nil
	}
}

package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/progress"
	"github.com/leapstack-labs/leapcat/pkg/query"
)

// Table is a relational table.
type Table struct {
	object
	temporary bool

	mu     sync.Mutex
	drafts []*Column
}

var (
	_ core.HasAttributes   = (*Table)(nil)
	_ core.HasDependencies = (*Table)(nil)
	_ core.Commented       = (*Table)(nil)
	_ core.Owned           = (*Table)(nil)
)

// Kind returns core.KindTable.
func (t *Table) Kind() core.Kind { return core.KindTable }

// Temporary reports whether the table is a global temporary table.
func (t *Table) Temporary() bool { return t.temporary }

// Ref returns the key of the table.
func (t *Table) Ref() Ref { return t.ref(core.KindTable) }

// Columns returns the columns in ordinal order.
func (t *Table) Columns(ctx context.Context) ([]*Column, error) {
	if !t.persisted {
		t.mu.Lock()
		defer t.mu.Unlock()
		return slices.Clone(t.drafts), nil
	}
	return t.schema.tables.Children(ctx, t)
}

// Column returns the named column, or nil.
func (t *Table) Column(ctx context.Context, name string) (*Column, error) {
	cols, err := t.Columns(ctx)
	if err != nil {
		return nil, err
	}
	key := t.schema.key(name)
	for _, c := range cols {
		if t.schema.key(c.name) == key {
			return c, nil
		}
	}
	return nil, nil
}

// Attributes returns the columns as attributes.
func (t *Table) Attributes(ctx context.Context) ([]core.Attribute, error) {
	return attributes(t.Columns(ctx))
}

// Constraints returns primary key, unique and check constraints.
func (t *Table) Constraints(ctx context.Context) ([]*Constraint, error) {
	if !t.persisted {
		return nil, nil
	}
	return t.schema.constraints.GetObjects(ctx, t)
}

// ForeignKeys returns the foreign keys declared on the table.
func (t *Table) ForeignKeys(ctx context.Context) ([]*ForeignKey, error) {
	if !t.persisted {
		return nil, nil
	}
	return t.schema.foreignKeys.GetObjects(ctx, t)
}

// Indexes returns the indexes of the table.
func (t *Table) Indexes(ctx context.Context) ([]*Index, error) {
	if !t.persisted {
		return nil, nil
	}
	return t.schema.indexes.GetObjects(ctx, t)
}

// Triggers returns the triggers defined on the table.
func (t *Table) Triggers(ctx context.Context) ([]*Trigger, error) {
	if !t.persisted {
		return nil, nil
	}
	all, err := t.schema.Triggers(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Trigger
	key := t.schema.key(t.name)
	for _, tr := range all {
		if !tr.table.IsZero() && t.schema.key(tr.table.Name) == key {
			out = append(out, tr)
		}
	}
	return out, nil
}

// HasDependents reports whether the table owns dependent objects of kind.
// Lookup failures are logged and reported as false.
func (t *Table) HasDependents(ctx context.Context, kind core.DependentKind) bool {
	var n int
	var err error
	switch kind {
	case core.DependentForeignKeys:
		var fks []*ForeignKey
		fks, err = t.ForeignKeys(ctx)
		n = len(fks)
	case core.DependentTriggers:
		var trs []*Trigger
		trs, err = t.Triggers(ctx)
		n = len(trs)
	case core.DependentIndexes:
		var ixs []*Index
		ixs, err = t.Indexes(ctx)
		n = len(ixs)
	}
	if err != nil {
		t.schema.logger.Warn("dependent lookup failed",
			slog.String("object", t.QualifiedName()),
			slog.String("dependent", string(kind)),
			slog.String("error", err.Error()))
		return false
	}
	return n > 0
}

// Dependencies collects the constraints, foreign keys, indexes and triggers
// of the table. Cancellation is polled before each item; a canceled walk
// returns what was collected so far without error.
func (t *Table) Dependencies(ctx context.Context, mon progress.Monitor) ([]core.Named, error) {
	mon = progress.OrNop(mon)
	steps := []struct {
		label string
		load  func(context.Context) ([]core.Named, error)
	}{
		{"constraints", func(ctx context.Context) ([]core.Named, error) { return named(t.Constraints(ctx)) }},
		{"foreign keys", func(ctx context.Context) ([]core.Named, error) { return named(t.ForeignKeys(ctx)) }},
		{"indexes", func(ctx context.Context) ([]core.Named, error) { return named(t.Indexes(ctx)) }},
		{"triggers", func(ctx context.Context) ([]core.Named, error) { return named(t.Triggers(ctx)) }},
	}

	var out []core.Named
	for _, step := range steps {
		if mon.IsCanceled() {
			return out, nil
		}
		mon.SubTask("Loading " + step.label + " of " + t.QualifiedName())
		objs, err := step.load(ctx)
		if err != nil {
			return out, err
		}
		for _, o := range objs {
			if mon.IsCanceled() {
				return out, nil
			}
			out = append(out, o)
			mon.Worked(1)
		}
	}
	return out, nil
}

// SetComment changes the comment of an unpersisted table.
func (t *Table) SetComment(comment string) {
	t.comment = comment
}

// AddColumn appends a column to an unpersisted table.
func (t *Table) AddColumn(name, dataType string, nullable bool) *Column {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := &Column{
		table:    t.name,
		name:     name,
		dataType: dataType,
		position: len(t.drafts) + 1,
		nullable: nullable,
	}
	t.drafts = append(t.drafts, c)
	return c
}

// Column is a table or view column.
type Column struct {
	table        string
	name         string
	dataType     string
	position     int
	nullable     bool
	defaultValue string
	comment      string
}

var _ core.Attribute = (*Column)(nil)

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Kind returns core.KindColumn.
func (c *Column) Kind() core.Kind { return core.KindColumn }

// TableName returns the name of the owning table or view.
func (c *Column) TableName() string { return c.table }

// TypeName returns the declared data type.
func (c *Column) TypeName() string { return c.dataType }

// Ordinal returns the 1-based column position.
func (c *Column) Ordinal() int { return c.position }

// Nullable reports whether the column accepts nulls.
func (c *Column) Nullable() bool { return c.nullable }

// Default returns the default expression, empty if none.
func (c *Column) Default() string { return c.defaultValue }

// Comment returns the column comment.
func (c *Column) Comment() string { return c.comment }

// SetComment changes the comment of a draft column.
func (c *Column) SetComment(comment string) { c.comment = comment }

// SetDefault changes the default expression of a draft column.
func (c *Column) SetDefault(expr string) { c.defaultValue = expr }

func fetchColumn(_ context.Context, parent core.Named, row query.Row) (*Column, error) {
	name, err := row.String(ColName)
	if err != nil {
		return nil, err
	}
	pos, err := row.Int(ColPosition)
	if err != nil {
		return nil, err
	}
	nullable := true
	if row.Has(ColNullable) && !row.IsNull(ColNullable) {
		nullable = row.SafeBool(ColNullable)
	}
	return &Column{
		table:        parent.Name(),
		name:         name,
		dataType:     row.SafeString(ColDataType),
		position:     pos,
		nullable:     nullable,
		defaultValue: row.SafeString(ColDefault),
		comment:      row.SafeString(ColComments),
	}, nil
}

func attributes[T core.Attribute](objs []T, err error) ([]core.Attribute, error) {
	if err != nil {
		return nil, err
	}
	out := make([]core.Attribute, len(objs))
	for i, o := range objs {
		out[i] = o
	}
	return out, nil
}

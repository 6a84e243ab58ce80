package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// ConstraintType classifies a table constraint.
type ConstraintType string

// Constraint types.
const (
	PrimaryKey ConstraintType = "PRIMARY KEY"
	UniqueKey  ConstraintType = "UNIQUE"
	Check      ConstraintType = "CHECK"
)

// ParseConstraintType accepts both dictionary codes (P, U, C) and full names.
func ParseConstraintType(s string) (ConstraintType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P", "PRIMARY KEY":
		return PrimaryKey, nil
	case "U", "UNIQUE":
		return UniqueKey, nil
	case "C", "CHECK":
		return Check, nil
	default:
		return "", fmt.Errorf("unknown constraint type %q", s)
	}
}

// KeyColumn is one column of a key or index.
type KeyColumn struct {
	Name       string
	Position   int
	Descending bool
}

// Constraint is a primary key, unique or check constraint.
type Constraint struct {
	object
	table     Ref
	ctype     ConstraintType
	condition string
	columns   []KeyColumn
}

// Kind returns core.KindConstraint.
func (c *Constraint) Kind() core.Kind { return core.KindConstraint }

// Type returns the constraint type.
func (c *Constraint) Type() ConstraintType { return c.ctype }

// Condition returns the check condition, empty for keys.
func (c *Constraint) Condition() string { return c.condition }

// TableRef returns the key of the constrained table.
func (c *Constraint) TableRef() Ref { return c.table }

// Columns returns the key columns in position order.
func (c *Constraint) Columns() []KeyColumn { return c.columns }

// Table resolves the constrained table.
func (c *Constraint) Table(ctx context.Context) (*Table, error) {
	return c.schema.Table(ctx, c.table.Name)
}

// ForeignKey is a referential constraint.
type ForeignKey struct {
	object
	table      Ref
	referenced *LazyRef
	deleteRule string
	columns    []KeyColumn
}

// Kind returns core.KindForeignKey.
func (f *ForeignKey) Kind() core.Kind { return core.KindForeignKey }

// TableRef returns the key of the referencing table.
func (f *ForeignKey) TableRef() Ref { return f.table }

// DeleteRule returns the ON DELETE action (NO ACTION, CASCADE, SET NULL).
func (f *ForeignKey) DeleteRule() string { return f.deleteRule }

// Columns returns the referencing columns in position order.
func (f *ForeignKey) Columns() []KeyColumn { return f.columns }

// Referenced returns the lazy reference to the referenced key constraint.
func (f *ForeignKey) Referenced() *LazyRef { return f.referenced }

// ReferencedConstraint resolves the referenced key.
func (f *ForeignKey) ReferencedConstraint(ctx context.Context) (*Constraint, error) {
	obj, err := f.referenced.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(*Constraint)
	if !ok {
		return nil, fmt.Errorf("foreign key %s references %s, not a constraint", f.QualifiedName(), obj.Kind())
	}
	return c, nil
}

// ReferencedTable resolves the table owning the referenced key.
func (f *ForeignKey) ReferencedTable(ctx context.Context) (*Table, error) {
	c, err := f.ReferencedConstraint(ctx)
	if err != nil {
		return nil, err
	}
	return c.Table(ctx)
}

// Index is a table index.
type Index struct {
	object
	table     Ref
	unique    bool
	indexType string
	columns   []KeyColumn
}

// Kind returns core.KindIndex.
func (i *Index) Kind() core.Kind { return core.KindIndex }

// TableRef returns the key of the indexed table.
func (i *Index) TableRef() Ref { return i.table }

// Unique reports whether the index enforces uniqueness.
func (i *Index) Unique() bool { return i.unique }

// IndexType returns the backend index type (NORMAL, BITMAP, ...).
func (i *Index) IndexType() string { return i.indexType }

// Columns returns the indexed columns in position order.
func (i *Index) Columns() []KeyColumn { return i.columns }

package catalog

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// Package is a stored program unit.
type Package struct {
	object
	hasBody bool
	source  sourceMemo
}

var _ core.SourceObject = (*Package)(nil)

// Kind returns core.KindPackage.
func (p *Package) Kind() core.Kind { return core.KindPackage }

// HasBody reports whether a package body exists.
func (p *Package) HasBody() bool { return p.hasBody }

// Source returns the package specification text.
func (p *Package) Source(ctx context.Context) (string, error) {
	return p.source.get(ctx, p.schema, core.KindPackage, p.name)
}

// Declarations returns the variables, routines and nested types declared in
// the specification. Extraction failures yield empty declarations.
func (p *Package) Declarations(ctx context.Context) core.Declarations {
	return p.source.declarations(ctx, p.schema, core.KindPackage, p.name)
}

// Procedures returns the declared procedures.
func (p *Package) Procedures(ctx context.Context) []core.Procedure {
	return p.Declarations(ctx).Procedures
}

// Functions returns the declared functions.
func (p *Package) Functions(ctx context.Context) []core.Function {
	return p.Declarations(ctx).Functions
}

// DataType is a user-defined type: an object type, collection or record.
type DataType struct {
	object
	typeCode string
	final    bool
	super    *LazyRef
	source   sourceMemo
}

var (
	_ core.HasAttributes = (*DataType)(nil)
	_ core.SourceObject  = (*DataType)(nil)
)

// Kind returns core.KindType.
func (t *DataType) Kind() core.Kind { return core.KindType }

// TypeCode returns the backend type code (OBJECT, COLLECTION, ...).
func (t *DataType) TypeCode() string { return t.typeCode }

// Final reports whether the type can not be subtyped.
func (t *DataType) Final() bool { return t.final }

// SuperType returns the lazy reference to the super type, nil for root types.
func (t *DataType) SuperType() *LazyRef { return t.super }

// TypeAttributes returns the attributes in ordinal order.
func (t *DataType) TypeAttributes(ctx context.Context) ([]*TypeAttribute, error) {
	return t.schema.types.Children(ctx, t)
}

// Attributes returns the type attributes as attributes.
func (t *DataType) Attributes(ctx context.Context) ([]core.Attribute, error) {
	return attributes(t.TypeAttributes(ctx))
}

// Source returns the type specification text.
func (t *DataType) Source(ctx context.Context) (string, error) {
	return t.source.get(ctx, t.schema, core.KindType, t.name)
}

// Declarations returns the members declared in the type specification.
func (t *DataType) Declarations(ctx context.Context) core.Declarations {
	return t.source.declarations(ctx, t.schema, core.KindType, t.name)
}

// Methods returns the member procedures and functions.
func (t *DataType) Methods(ctx context.Context) ([]core.Procedure, []core.Function) {
	d := t.Declarations(ctx)
	return d.Procedures, d.Functions
}

// TypeAttribute is one attribute of an object type.
type TypeAttribute struct {
	typeName string
	name     string
	dataType string
	position int
}

var _ core.Attribute = (*TypeAttribute)(nil)

// Name returns the attribute name.
func (a *TypeAttribute) Name() string { return a.name }

// Kind returns core.KindTypeAttribute.
func (a *TypeAttribute) Kind() core.Kind { return core.KindTypeAttribute }

// OwnerType returns the name of the declaring type.
func (a *TypeAttribute) OwnerType() string { return a.typeName }

// TypeName returns the attribute data type.
func (a *TypeAttribute) TypeName() string { return a.dataType }

// Ordinal returns the 1-based position.
func (a *TypeAttribute) Ordinal() int { return a.position }

// Nullable is always true for type attributes.
func (a *TypeAttribute) Nullable() bool { return true }

// Comment is always empty for type attributes.
func (a *TypeAttribute) Comment() string { return "" }

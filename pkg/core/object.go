package core

import "context"

// Named is implemented by every catalog object.
type Named interface {
	Name() string
	Kind() Kind
}

// Owned is implemented by objects living inside a schema.
type Owned interface {
	SchemaName() string
}

// Commented is implemented by objects carrying a user comment.
type Commented interface {
	Comment() string
}

// Attribute is one ordered attribute of a structured object (a column or a
// type attribute).
type Attribute interface {
	Named
	Commented
	TypeName() string
	Ordinal() int
	Nullable() bool
}

// HasAttributes is implemented by structured objects (tables, views, types).
type HasAttributes interface {
	Attributes(ctx context.Context) ([]Attribute, error)
}

// HasDependencies is implemented by objects owning dependent objects that are
// described separately (foreign keys, triggers, indexes).
type HasDependencies interface {
	HasDependents(ctx context.Context, kind DependentKind) bool
}

// SourceObject is implemented by objects whose declaration is stored as text.
type SourceObject interface {
	Source(ctx context.Context) (string, error)
}

// Persistable reports whether an object exists in the backend or was only
// constructed in memory.
type Persistable interface {
	IsPersisted() bool
}

// QualifiedName joins a schema and object name with a dot.
// An empty schema yields the bare name.
func QualifiedName(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}

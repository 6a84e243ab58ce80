package catalog

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// Ref identifies an object by kind, schema and name. It is the key used for
// every cross reference in the graph.
type Ref struct {
	Kind   core.Kind
	Schema string
	Name   string
}

// IsZero reports whether the reference is empty.
func (r Ref) IsZero() bool {
	return r.Name == ""
}

// String returns the qualified name.
func (r Ref) String() string {
	return core.QualifiedName(r.Schema, r.Name)
}

// Resolver resolves references against the cached graph.
type Resolver interface {
	Resolve(ctx context.Context, ref Ref) (core.Named, error)
}

// LazyRef is a reference resolved on first access through the owning
// database. Resolution goes through the schema caches, which hold the only
// strong references to catalog objects.
type LazyRef struct {
	ref      Ref
	resolver Resolver
}

// NewLazyRef creates a lazy reference.
func NewLazyRef(resolver Resolver, ref Ref) *LazyRef {
	return &LazyRef{ref: ref, resolver: resolver}
}

// Ref returns the unresolved key.
func (l *LazyRef) Ref() Ref {
	if l == nil {
		return Ref{}
	}
	return l.ref
}

// IsZero reports whether there is nothing to resolve.
func (l *LazyRef) IsZero() bool {
	return l == nil || l.ref.IsZero()
}

// Resolve returns the referenced object. A missing object yields a
// NotFoundError.
func (l *LazyRef) Resolve(ctx context.Context) (core.Named, error) {
	if l.IsZero() {
		return nil, &core.NotFoundError{Kind: l.Ref().Kind}
	}
	return l.resolver.Resolve(ctx, l.ref)
}

// Display returns the qualified name of the resolved object, or the raw
// identifier when resolution fails.
func (l *LazyRef) Display(ctx context.Context) string {
	if l.IsZero() {
		return ""
	}
	obj, err := l.Resolve(ctx)
	if err != nil || obj == nil {
		return l.ref.String()
	}
	if owned, ok := obj.(core.Owned); ok {
		return core.QualifiedName(owned.SchemaName(), obj.Name())
	}
	return obj.Name()
}

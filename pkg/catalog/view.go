package catalog

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/core"
)

// View is a stored query.
type View struct {
	object
	text string
}

var (
	_ core.HasAttributes = (*View)(nil)
	_ core.SourceObject  = (*View)(nil)
)

// Kind returns core.KindView.
func (v *View) Kind() core.Kind { return core.KindView }

// Columns returns the view columns in ordinal order.
func (v *View) Columns(ctx context.Context) ([]*Column, error) {
	return v.schema.views.Children(ctx, v)
}

// Attributes returns the columns as attributes.
func (v *View) Attributes(ctx context.Context) ([]core.Attribute, error) {
	return attributes(v.Columns(ctx))
}

// Source returns the query text of the view.
func (v *View) Source(context.Context) (string, error) {
	return v.text, nil
}

// MaterializedView is a view whose result is stored.
type MaterializedView struct {
	object
	query       string
	refreshMode string
}

var _ core.SourceObject = (*MaterializedView)(nil)

// Kind returns core.KindMaterializedView.
func (m *MaterializedView) Kind() core.Kind { return core.KindMaterializedView }

// RefreshMode returns the refresh mode reported by the backend (DEMAND, COMMIT, ...).
func (m *MaterializedView) RefreshMode() string { return m.refreshMode }

// Source returns the defining query.
func (m *MaterializedView) Source(context.Context) (string, error) {
	return m.query, nil
}

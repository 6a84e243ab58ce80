package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/decl"
)

// object holds the fields shared by every schema-owned catalog object.
type object struct {
	schema    *Schema
	name      string
	comment   string
	persisted bool
	state     core.ObjectState
}

// Name returns the object name.
func (o *object) Name() string { return o.name }

// SchemaName returns the owning schema name.
func (o *object) SchemaName() string { return o.schema.Name() }

// Schema returns the owning schema.
func (o *object) Schema() *Schema { return o.schema }

// Comment returns the user comment, empty if none.
func (o *object) Comment() string { return o.comment }

// IsPersisted reports whether the object was loaded from the backend.
func (o *object) IsPersisted() bool { return o.persisted }

// State returns the validity state.
func (o *object) State() core.ObjectState { return o.state }

// QualifiedName returns schema.name.
func (o *object) QualifiedName() string { return core.QualifiedName(o.schema.Name(), o.name) }

func (o *object) ref(kind core.Kind) Ref {
	return Ref{Kind: kind, Schema: o.schema.Name(), Name: o.name}
}

// sourceMemo fetches and memoizes the declaration text of a program unit and
// the declarations extracted from it. Failures are not memoized.
type sourceMemo struct {
	mu     sync.Mutex
	loaded bool
	source string
	decls  *core.Declarations
}

func (m *sourceMemo) get(ctx context.Context, s *Schema, kind core.Kind, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return m.source, nil
	}
	src, err := s.fetchSource(ctx, kind, name)
	if err != nil {
		return "", err
	}
	m.source, m.loaded = src, true
	return src, nil
}

func (m *sourceMemo) declarations(ctx context.Context, s *Schema, kind core.Kind, name string) core.Declarations {
	src, err := m.get(ctx, s, kind, name)
	if err != nil {
		s.logger.Warn("declaration source unavailable",
			slog.String("object", core.QualifiedName(s.Name(), name)),
			slog.String("error", err.Error()))
		return core.Declarations{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decls == nil {
		d := decl.Extract(src, s.logger)
		m.decls = &d
	}
	return *m.decls
}

func (m *sourceMemo) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded, m.source, m.decls = false, "", nil
}

func joinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		if !strings.HasSuffix(l, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

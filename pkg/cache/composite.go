package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"golang.org/x/sync/singleflight"
)

// ParentSource is the cache that owns the parents of a composite cache.
type ParentSource[P Object] interface {
	GetAll(ctx context.Context) ([]P, error)
}

// CompositeConfig describes how flattened parent/child/grandchild rows map to
// objects. Either FetchRow or FetchPacked (with PackedColumn) supplies the
// grandchildren; both may be set, the packed column wins when a row carries it.
type CompositeConfig[P Object, T Object, R any] struct {
	Name string

	// ParentColumn and ObjectColumn form the composite key of a row.
	ParentColumn string
	ObjectColumn string
	// PackedColumn names the optional column carrying "NAME:POS,..." lists.
	PackedColumn string

	// RequestAll loads every child of every parent.
	RequestAll func() query.Request
	// RequestFor loads the children of one parent. An unsupported request
	// falls back to RequestAll.
	RequestFor func(parent P) query.Request

	// FetchObject builds the child from the first row of its group.
	FetchObject func(ctx context.Context, parent P, row query.Row) (T, error)
	// FetchRow extracts one grandchild from a row. ok is false when the row
	// carries none, such as an outer-joined null.
	FetchRow func(ctx context.Context, obj T, row query.Row) (r R, ok bool, err error)
	// FetchPacked builds one grandchild from a packed list entry.
	FetchPacked func(ctx context.Context, obj T, entry PackedEntry) (R, error)
	// CacheRows attaches the ordered grandchildren to the child.
	CacheRows func(obj T, rows []R)
	// Ordinal orders grandchildren. Query order is kept when nil.
	Ordinal func(r R) int
}

// CompositeCache holds children of many parents loaded by one flattened query.
type CompositeCache[P Object, T Object, R any] struct {
	cfg     CompositeConfig[P, T, R]
	exec    query.Executor
	parents ParentSource[P]
	opts    Options
	compare func(a, b T) int

	mu          sync.RWMutex
	byParent    map[string][]T
	index       map[string]map[string]T
	fullyCached bool
	generation  uint64
	dependents  []Invalidator

	group singleflight.Group
}

// NewComposite creates a composite cache over parents.
func NewComposite[P Object, T Object, R any](cfg CompositeConfig[P, T, R], exec query.Executor,
	parents ParentSource[P], opts Options,
) *CompositeCache[P, T, R] {
	return &CompositeCache[P, T, R]{
		cfg:      cfg,
		exec:     exec,
		parents:  parents,
		opts:     opts.withDefaults(),
		compare:  CompareNames[T],
		byParent: make(map[string][]T),
		index:    make(map[string]map[string]T),
	}
}

// Name returns the cache name.
func (c *CompositeCache[P, T, R]) Name() string {
	return c.cfg.Name
}

// SetComparator overrides the per-parent child order.
func (c *CompositeCache[P, T, R]) SetComparator(cmp func(a, b T) int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compare = cmp
	for k, objs := range c.byParent {
		slices.SortStableFunc(objs, cmp)
		c.byParent[k] = objs
	}
}

// AddDependent registers a cache cleared together with this one.
func (c *CompositeCache[P, T, R]) AddDependent(d Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dependents = append(c.dependents, d)
}

// IsFullyCached reports whether the children of every parent are loaded.
func (c *CompositeCache[P, T, R]) IsFullyCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fullyCached
}

func (c *CompositeCache[P, T, R]) key(name string) string {
	return c.opts.Normalizer.Normalize(name)
}

// GetAll loads the children of every parent, grouped in parent order.
func (c *CompositeCache[P, T, R]) GetAll(ctx context.Context) ([]T, error) {
	if !c.IsFullyCached() {
		_, err, _ := c.group.Do(allKey, func() (any, error) {
			if c.IsFullyCached() {
				return nil, nil
			}
			return nil, c.loadAll(ctx)
		})
		if err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.byParent))
	for k := range c.byParent {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int { return strings.Compare(ident.Fold(a), ident.Fold(b)) })
	var out []T
	for _, k := range keys {
		out = append(out, c.byParent[k]...)
	}
	return out, nil
}

// GetObjects returns the children of parent, loading them if needed.
func (c *CompositeCache[P, T, R]) GetObjects(ctx context.Context, parent P) ([]T, error) {
	pk := c.key(parent.Name())
	if objs, ok := c.cachedFor(pk); ok {
		return objs, nil
	}

	req := query.Request{}
	if c.cfg.RequestFor != nil {
		req = c.cfg.RequestFor(parent)
	}
	if req.Unsupported() {
		if _, err := c.GetAll(ctx); err != nil {
			return nil, err
		}
		objs, _ := c.cachedFor(pk)
		return objs, nil
	}

	_, err, _ := c.group.Do("parent:"+pk, func() (any, error) {
		if _, ok := c.cachedFor(pk); ok {
			return nil, nil
		}
		gen := c.currentGeneration()
		groups, err := c.fetchGroups(ctx, req, func(string) (P, bool) { return parent, true })
		if err != nil {
			return nil, err
		}
		c.install(map[string][]T{pk: groups[pk]}, gen, false)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	objs, _ := c.cachedFor(pk)
	return objs, nil
}

// Get returns the named child of parent, or the zero value when absent.
func (c *CompositeCache[P, T, R]) Get(ctx context.Context, parent P, name string) (T, error) {
	var zero T
	if _, err := c.GetObjects(ctx, parent); err != nil {
		return zero, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if obj, ok := c.index[c.key(parent.Name())][c.key(name)]; ok {
		return obj, nil
	}
	return zero, nil
}

// ClearParent drops the children of one parent.
func (c *CompositeCache[P, T, R]) ClearParent(parent P) {
	pk := c.key(parent.Name())
	c.mu.Lock()
	delete(c.byParent, pk)
	delete(c.index, pk)
	c.fullyCached = false
	c.generation++
	c.mu.Unlock()
	c.group.Forget(allKey)
	c.group.Forget("parent:" + pk)
}

// Clear drops every child and cascades to dependents.
func (c *CompositeCache[P, T, R]) Clear() {
	c.mu.Lock()
	c.byParent = make(map[string][]T)
	c.index = make(map[string]map[string]T)
	c.fullyCached = false
	c.generation++
	deps := slices.Clone(c.dependents)
	c.mu.Unlock()

	c.group.Forget(allKey)
	for _, d := range deps {
		d.Clear()
	}
}

func (c *CompositeCache[P, T, R]) cachedFor(pk string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	objs, ok := c.byParent[pk]
	if !ok && c.fullyCached {
		return nil, true
	}
	return slices.Clone(objs), ok
}

func (c *CompositeCache[P, T, R]) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *CompositeCache[P, T, R]) loadAll(ctx context.Context) error {
	gen := c.currentGeneration()
	parents, err := c.parents.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load parents of %s: %w", c.cfg.Name, err)
	}
	byName := make(map[string]P, len(parents))
	for _, p := range parents {
		byName[c.key(p.Name())] = p
	}

	groups, err := c.fetchGroups(ctx, c.cfg.RequestAll(), func(pk string) (P, bool) {
		p, ok := byName[pk]
		return p, ok
	})
	if err != nil {
		return err
	}
	for pk := range byName {
		if _, ok := groups[pk]; !ok {
			groups[pk] = nil
		}
	}
	c.install(groups, gen, true)
	return nil
}

type rowGroup struct {
	pk, ck string
	rows   []query.Row
}

// fetchGroups runs req, groups rows by composite key in arrival order and
// builds one child per group.
func (c *CompositeCache[P, T, R]) fetchGroups(ctx context.Context, req query.Request,
	parentOf func(pk string) (P, bool),
) (map[string][]T, error) {
	out := make(map[string][]T)
	if req.Unsupported() {
		return out, nil
	}

	cur, err := c.exec.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	var groups []*rowGroup
	seen := make(map[string]*rowGroup)
	for cur.Next() {
		row := query.Snapshot(cur)
		pk := c.key(row.SafeString(c.cfg.ParentColumn))
		ck := c.key(row.SafeString(c.cfg.ObjectColumn))
		id := pk + "\x00" + ck
		g, ok := seen[id]
		if !ok {
			g = &rowGroup{pk: pk, ck: ck}
			seen[id] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}
	err = cur.Err()
	_ = cur.Close()
	if err != nil {
		return nil, err
	}

	for _, g := range groups {
		parent, ok := parentOf(g.pk)
		if !ok {
			c.malformed(g.ck, fmt.Errorf("parent %q not found", g.pk))
			continue
		}
		obj, err := c.buildObject(ctx, parent, g)
		if err != nil {
			c.malformed(g.ck, err)
			continue
		}
		out[g.pk] = append(out[g.pk], obj)
	}
	return out, nil
}

func (c *CompositeCache[P, T, R]) buildObject(ctx context.Context, parent P, g *rowGroup) (T, error) {
	c.mu.RLock()
	existing, ok := c.index[g.pk][g.ck]
	c.mu.RUnlock()
	if ok {
		return existing, nil
	}

	obj, err := c.cfg.FetchObject(ctx, parent, g.rows[0])
	if err != nil {
		return obj, err
	}
	if c.cfg.CacheRows == nil {
		return obj, nil
	}

	var rows []R
	for _, row := range g.rows {
		if c.cfg.PackedColumn != "" && c.cfg.FetchPacked != nil && row.Has(c.cfg.PackedColumn) {
			entries, err := DecodePackedList(row.SafeString(c.cfg.PackedColumn))
			if err != nil {
				return obj, err
			}
			for _, e := range entries {
				r, err := c.cfg.FetchPacked(ctx, obj, e)
				if err != nil {
					c.malformed(g.ck, err)
					continue
				}
				rows = append(rows, r)
			}
			continue
		}
		if c.cfg.FetchRow == nil {
			continue
		}
		r, ok, err := c.cfg.FetchRow(ctx, obj, row)
		if err != nil {
			c.malformed(g.ck, err)
			continue
		}
		if ok {
			rows = append(rows, r)
		}
	}
	if c.cfg.Ordinal != nil {
		slices.SortStableFunc(rows, func(a, b R) int { return c.cfg.Ordinal(a) - c.cfg.Ordinal(b) })
	}
	c.cfg.CacheRows(obj, rows)
	return obj, nil
}

// install stores loaded children. A full load replaces every per-parent list.
// Nothing is stored when the cache was cleared while loading.
func (c *CompositeCache[P, T, R]) install(groups map[string][]T, gen uint64, full bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	if full {
		c.byParent = make(map[string][]T, len(groups))
		c.index = make(map[string]map[string]T, len(groups))
	}
	for pk, objs := range groups {
		objs = slices.Clone(objs)
		slices.SortStableFunc(objs, c.compare)
		idx := make(map[string]T, len(objs))
		for _, o := range objs {
			idx[c.key(o.Name())] = o
		}
		if objs == nil {
			objs = []T{}
		}
		c.byParent[pk] = objs
		c.index[pk] = idx
	}
	if full {
		c.fullyCached = true
	}
}

func (c *CompositeCache[P, T, R]) malformed(key string, err error) {
	var mr *core.MalformedRowError
	if !errors.As(err, &mr) {
		mr = &core.MalformedRowError{Cache: c.cfg.Name, Key: key, Err: err}
	}
	logMalformed(c.opts.Logger, mr)
}

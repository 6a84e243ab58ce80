package cache

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/query"
	"golang.org/x/sync/singleflight"
)

// StructConfig describes the child level of a StructCache.
type StructConfig[T Object, C any] struct {
	// ChildParentColumn names the column carrying the parent name of a child row.
	ChildParentColumn string
	// ChildRequestAll loads the children of every parent.
	ChildRequestAll func() query.Request
	// ChildRequestFor loads the children of one parent. An unsupported
	// request falls back to ChildRequestAll.
	ChildRequestFor func(parent T) query.Request
	// FetchChild maps one child row.
	FetchChild func(ctx context.Context, parent T, row query.Row) (C, error)
	// LoadAllChildren loads every parent's children in one batch once the
	// parent level is fully cached.
	LoadAllChildren bool
}

// StructCache is a LookupCache of parents whose children are loaded in a
// separate batch and distributed by parent name.
type StructCache[T Object, C any] struct {
	*LookupCache[T]
	child StructConfig[T, C]

	cmu      sync.RWMutex
	children map[string][]C
	childGen uint64
	cgroup   singleflight.Group
}

// NewStruct wraps parents with a child loader.
func NewStruct[T Object, C any](parents *LookupCache[T], child StructConfig[T, C]) *StructCache[T, C] {
	return &StructCache[T, C]{
		LookupCache: parents,
		child:       child,
		children:    make(map[string][]C),
	}
}

// Children returns the children of parent in query order.
func (c *StructCache[T, C]) Children(ctx context.Context, parent T) ([]C, error) {
	pk := c.key(parent.Name())
	if kids, ok := c.cachedChildren(pk); ok {
		return kids, nil
	}

	var req query.Request
	if c.child.ChildRequestFor != nil {
		req = c.child.ChildRequestFor(parent)
	}
	if req.Unsupported() || (c.child.LoadAllChildren && c.IsFullyCached()) {
		if err := c.loadAllChildren(ctx); err != nil {
			return nil, err
		}
		kids, _ := c.cachedChildren(pk)
		return kids, nil
	}

	_, err, _ := c.cgroup.Do("parent:"+pk, func() (any, error) {
		if _, ok := c.cachedChildren(pk); ok {
			return nil, nil
		}
		gen := c.childGeneration()
		rows, err := fetchObjects(ctx, c.exec, req, c.name, c.opts.Logger, func(ctx context.Context, row query.Row) (C, error) {
			return c.child.FetchChild(ctx, parent, row)
		})
		if err != nil {
			return nil, err
		}
		c.installChildren(map[string][]C{pk: rows}, gen)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	kids, _ := c.cachedChildren(pk)
	return kids, nil
}

func (c *StructCache[T, C]) loadAllChildren(ctx context.Context) error {
	_, err, _ := c.cgroup.Do(allKey, func() (any, error) {
		gen := c.childGeneration()
		parents, err := c.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		byName := make(map[string]T, len(parents))
		for _, p := range parents {
			byName[c.key(p.Name())] = p
		}

		dist := make(map[string][]C, len(parents))
		for pk := range byName {
			dist[pk] = nil
		}
		_, err = fetchObjects(ctx, c.exec, c.child.ChildRequestAll(), c.name, c.opts.Logger, func(ctx context.Context, row query.Row) (struct{}, error) {
			pk := c.key(row.SafeString(c.child.ChildParentColumn))
			parent, ok := byName[pk]
			if !ok {
				return struct{}{}, fmt.Errorf("parent %q not found", pk)
			}
			kid, err := c.child.FetchChild(ctx, parent, row)
			if err != nil {
				return struct{}{}, err
			}
			dist[pk] = append(dist[pk], kid)
			return struct{}{}, nil
		})
		if err != nil {
			return nil, err
		}
		c.installChildren(dist, gen)
		return nil, nil
	})
	return err
}

func (c *StructCache[T, C]) cachedChildren(pk string) ([]C, bool) {
	c.cmu.RLock()
	defer c.cmu.RUnlock()
	kids, ok := c.children[pk]
	return slices.Clone(kids), ok
}

func (c *StructCache[T, C]) childGeneration() uint64 {
	c.cmu.RLock()
	defer c.cmu.RUnlock()
	return c.childGen
}

func (c *StructCache[T, C]) installChildren(dist map[string][]C, gen uint64) {
	c.cmu.Lock()
	defer c.cmu.Unlock()
	if gen != c.childGen {
		return
	}
	for pk, kids := range dist {
		if kids == nil {
			kids = []C{}
		}
		c.children[pk] = kids
	}
}

// ClearChildren drops the child level only.
func (c *StructCache[T, C]) ClearChildren() {
	c.cmu.Lock()
	c.children = make(map[string][]C)
	c.childGen++
	c.cmu.Unlock()
	c.cgroup.Forget(allKey)
}

// Clear drops both levels and cascades to dependents.
func (c *StructCache[T, C]) Clear() {
	c.ClearChildren()
	c.LookupCache.Clear()
}

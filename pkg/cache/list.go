package cache

import (
	"context"

	"github.com/leapstack-labs/leapcat/pkg/query"
)

// FetchFunc maps the current row to an object.
type FetchFunc[T any] func(ctx context.Context, row query.Row) (T, error)

// ListCache is populated by a single full request and serves every lookup
// from the loaded set.
type ListCache[T Object] struct {
	objectCache[T]
	exec    query.Executor
	request func() query.Request
	fetch   FetchFunc[T]
}

// NewList creates a list cache.
func NewList[T Object](name string, exec query.Executor, request func() query.Request, fetch FetchFunc[T], opts Options) *ListCache[T] {
	c := &ListCache[T]{exec: exec, request: request, fetch: fetch}
	c.init(name, opts)
	return c
}

// GetAll returns every object of the container, populating the cache once.
func (c *ListCache[T]) GetAll(ctx context.Context) ([]T, error) {
	if c.IsFullyCached() {
		return c.Cached(), nil
	}
	v, err, _ := c.group.Do(allKey, func() (any, error) {
		if c.IsFullyCached() {
			return c.Cached(), nil
		}
		gen := c.currentGeneration()
		loaded, err := fetchObjects(ctx, c.exec, c.request(), c.name, c.opts.Logger, c.fetch)
		if err != nil {
			return nil, err
		}
		return c.installAll(loaded, gen), nil
	})
	if err != nil {
		var zero []T
		return zero, err
	}
	return v.([]T), nil
}

// Get returns the named object, or the zero value when it does not exist.
func (c *ListCache[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	if _, err := c.GetAll(ctx); err != nil {
		return zero, err
	}
	if obj, ok := c.lookup(c.key(name)); ok {
		return obj, nil
	}
	return zero, nil
}

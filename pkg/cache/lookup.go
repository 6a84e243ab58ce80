package cache

import (
	"context"
	"log/slog"
	"slices"

	"github.com/leapstack-labs/leapcat/pkg/query"
)

// LookupCache is populated either fully or by targeted per-name requests.
// Targeted results accumulate until the cache is cleared; names the backend
// reported missing are remembered so the request is not repeated.
type LookupCache[T Object] struct {
	ListCache[T]
	lookupRequest func(name string) query.Request
	missing       map[string]struct{}
}

// NewLookup creates a lookup cache. lookupRequest receives the normalized name.
func NewLookup[T Object](name string, exec query.Executor, request func() query.Request,
	lookupRequest func(name string) query.Request, fetch FetchFunc[T], opts Options,
) *LookupCache[T] {
	c := &LookupCache[T]{lookupRequest: lookupRequest, missing: make(map[string]struct{})}
	c.exec = exec
	c.request = request
	c.fetch = fetch
	c.init(name, opts)
	return c
}

// GetAll returns every object. A partially populated cache is reloaded in
// full; objects already returned by targeted lookups keep their identity.
func (c *LookupCache[T]) GetAll(ctx context.Context) ([]T, error) {
	objs, err := c.ListCache.GetAll(ctx)
	if err == nil {
		c.mu.Lock()
		c.missing = make(map[string]struct{})
		c.mu.Unlock()
	}
	return objs, err
}

// Get returns the named object, issuing one targeted request when the cache
// is not fully populated.
func (c *LookupCache[T]) Get(ctx context.Context, name string) (T, error) {
	var zero T
	key := c.key(name)
	if obj, ok := c.lookup(key); ok {
		return obj, nil
	}
	if c.IsFullyCached() || c.isMissing(key) {
		return zero, nil
	}

	req := c.lookupRequest(key)
	if req.Unsupported() {
		return c.ListCache.Get(ctx, name)
	}

	v, err, _ := c.group.Do("name:"+key, func() (any, error) {
		if obj, ok := c.lookup(key); ok {
			return obj, nil
		}
		gen := c.currentGeneration()
		loaded, err := fetchObjects(ctx, c.exec, req, c.name, c.opts.Logger, c.fetch)
		if err != nil {
			return nil, err
		}
		obj, found := c.mergeTargeted(key, loaded, gen)
		if !found {
			return nil, nil
		}
		return obj, nil
	})
	if err != nil || v == nil {
		return zero, err
	}
	return v.(T), nil
}

// mergeTargeted adds the result of a targeted request without discarding
// earlier targeted entries.
func (c *LookupCache[T]) mergeTargeted(key string, loaded []T, gen uint64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result T
	found := false
	install := gen == c.generation
	for _, obj := range loaded {
		k := c.key(obj.Name())
		if existing, ok := c.index[k]; ok {
			obj = existing
		} else if install {
			c.index[k] = obj
			c.objects = append(c.objects, obj)
		}
		if k == key {
			result, found = obj, true
		}
	}
	if install {
		slices.SortStableFunc(c.objects, c.compare)
		if !found {
			c.missing[key] = struct{}{}
			c.opts.Logger.Debug("object not found", slog.String("cache", c.name), slog.String("object", key))
		}
	}
	return result, found
}

func (c *LookupCache[T]) isMissing(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.missing[key]
	return ok
}

// CacheObject adds or replaces an object and forgets an earlier miss for its name.
func (c *LookupCache[T]) CacheObject(obj T) {
	c.mu.Lock()
	delete(c.missing, c.key(obj.Name()))
	c.mu.Unlock()
	c.objectCache.CacheObject(obj)
}

// Clear drops every entry including remembered misses.
func (c *LookupCache[T]) Clear() {
	c.mu.Lock()
	c.missing = make(map[string]struct{})
	c.mu.Unlock()
	c.objectCache.Clear()
}

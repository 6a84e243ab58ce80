// Package cache provides the per-container object caches backing every child
// collection of the catalog graph.
//
// Four variants share one contract:
//   - ListCache: one full-population request, get-all and get-by-name from the loaded set
//   - LookupCache: full population or one targeted request per name
//   - CompositeCache: flattened parent/child/grandchild rows grouped by composite key
//   - StructCache: parents first, then their children in one batch
//
// Population runs at most once per cache until it is cleared; concurrent
// first callers share one request through a singleflight guard. No lock is
// held while a request is in flight.
package cache

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapcat/pkg/core"
	"github.com/leapstack-labs/leapcat/pkg/ident"
	"github.com/leapstack-labs/leapcat/pkg/query"
	"golang.org/x/sync/singleflight"
)

// Object is anything a cache can hold.
type Object interface {
	Name() string
}

// Invalidator is implemented by every cache. Clearing a cache cascades to its
// dependents.
type Invalidator interface {
	Clear()
}

// Options holds the collaborators shared by all cache variants.
type Options struct {
	// Normalizer converts names to cache keys. Defaults to ident.Verbatim.
	Normalizer ident.Normalizer
	// Logger receives skipped rows and negative lookups. Defaults to discard.
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Normalizer == nil {
		o.Normalizer = ident.Verbatim{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// CompareNames orders objects by case-insensitive name.
func CompareNames[T Object](a, b T) int {
	return strings.Compare(ident.Fold(a.Name()), ident.Fold(b.Name()))
}

// objectCache is the ordered, name-indexed state shared by list and lookup caches.
type objectCache[T Object] struct {
	name    string
	opts    Options
	compare func(a, b T) int

	mu          sync.RWMutex
	objects     []T
	index       map[string]T
	fullyCached bool
	generation  uint64
	dependents  []Invalidator
	// drafts holds keys of objects added with CacheObject that no population
	// has returned yet.
	drafts map[string]bool

	group singleflight.Group
}

func (c *objectCache[T]) init(name string, opts Options) {
	c.name = name
	c.opts = opts.withDefaults()
	c.compare = CompareNames[T]
	c.index = make(map[string]T)
	c.drafts = make(map[string]bool)
}

// Name returns the cache name used in logs and errors.
func (c *objectCache[T]) Name() string {
	return c.name
}

func (c *objectCache[T]) key(name string) string {
	return c.opts.Normalizer.Normalize(name)
}

// SetComparator overrides the default case-insensitive name order.
func (c *objectCache[T]) SetComparator(cmp func(a, b T) int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.compare = cmp
	slices.SortStableFunc(c.objects, c.compare)
}

// AddDependent registers a cache holding references to this cache's objects.
// It is cleared whenever this cache is cleared.
func (c *objectCache[T]) AddDependent(d Invalidator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dependents = append(c.dependents, d)
}

// IsFullyCached reports whether every object of the container is known.
func (c *objectCache[T]) IsFullyCached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fullyCached
}

// Cached returns the currently cached objects without populating.
func (c *objectCache[T]) Cached() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.objects)
}

// CacheObject adds or replaces an object, typically one constructed in memory
// before it is persisted.
func (c *objectCache[T]) CacheObject(obj T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(obj.Name())
	if _, ok := c.index[k]; ok {
		c.objects = slices.DeleteFunc(c.objects, func(o T) bool { return c.key(o.Name()) == k })
	}
	c.index[k] = obj
	c.drafts[k] = true
	c.objects = append(c.objects, obj)
	slices.SortStableFunc(c.objects, c.compare)
}

// RemoveObject drops an object from the index.
func (c *objectCache[T]) RemoveObject(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k := c.key(name)
	if _, ok := c.index[k]; !ok {
		return
	}
	delete(c.index, k)
	delete(c.drafts, k)
	c.objects = slices.DeleteFunc(c.objects, func(o T) bool { return c.key(o.Name()) == k })
}

// Clear drops every entry and resets the fully-cached flag. Objects already
// handed out stay valid; only the index is discarded.
func (c *objectCache[T]) Clear() {
	c.mu.Lock()
	c.objects = nil
	c.index = make(map[string]T)
	c.drafts = make(map[string]bool)
	c.fullyCached = false
	c.generation++
	deps := slices.Clone(c.dependents)
	c.mu.Unlock()

	c.group.Forget(allKey)
	for _, d := range deps {
		d.Clear()
	}
}

func (c *objectCache[T]) lookup(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	obj, ok := c.index[key]
	return obj, ok
}

func (c *objectCache[T]) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// installAll replaces the content with a full population result. Objects
// already indexed (from targeted lookups or the editor flow) keep their
// identity, and drafts the backend does not know yet are kept. When the
// cache was cleared while the request was in flight the
// result is returned but not installed.
func (c *objectCache[T]) installAll(loaded []T, gen uint64) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(loaded))
	merged := make([]T, 0, len(loaded))
	for _, obj := range loaded {
		k := c.key(obj.Name())
		if seen[k] {
			c.opts.Logger.Warn("duplicate object in population result",
				slog.String("cache", c.name), slog.String("object", k))
			continue
		}
		seen[k] = true
		if existing, ok := c.index[k]; ok {
			obj = existing
		}
		merged = append(merged, obj)
	}
	current := gen == c.generation
	if current {
		for k := range c.drafts {
			if seen[k] {
				delete(c.drafts, k)
				continue
			}
			merged = append(merged, c.index[k])
		}
	}
	slices.SortStableFunc(merged, c.compare)

	if !current {
		return merged
	}

	c.objects = merged
	c.index = make(map[string]T, len(merged))
	for _, obj := range merged {
		c.index[c.key(obj.Name())] = obj
	}
	c.fullyCached = true
	return slices.Clone(merged)
}

const allKey = "\x00all"

// fetchObjects runs req and maps each row through fetch. Rows the hook rejects
// are logged and skipped; request and cursor failures are returned.
func fetchObjects[T any](ctx context.Context, exec query.Executor, req query.Request, cacheName string,
	logger *slog.Logger, fetch func(ctx context.Context, row query.Row) (T, error),
) ([]T, error) {
	if req.Unsupported() {
		return nil, nil
	}
	cur, err := exec.Query(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close() }()

	var out []T
	for cur.Next() {
		obj, err := fetch(ctx, cur)
		if err != nil {
			logMalformed(logger, &core.MalformedRowError{Cache: cacheName, Key: firstColumn(cur), Err: err})
			continue
		}
		out = append(out, obj)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func firstColumn(row query.Row) string {
	cols := row.Columns()
	if len(cols) == 0 {
		return ""
	}
	return row.SafeString(cols[0])
}

func logMalformed(logger *slog.Logger, err *core.MalformedRowError) {
	logger.Warn("skipping malformed row",
		slog.String("cache", err.Cache),
		slog.String("key", err.Key),
		slog.String("error", err.Err.Error()))
}

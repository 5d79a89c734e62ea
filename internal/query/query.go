// Package query caches server reads keyed by resource and parameters, and
// drops cached reads when a mutation touches their resource.
//
// Invalidation follows a declared Graph rather than per-call-site rules:
// mutating transactions also invalidates budgets because budget spend is
// derived from transactions.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/theirongolddev/tally/internal/logger"
)

// Resource names a server collection.
type Resource string

const (
	Categories   Resource = "categories"
	Transactions Resource = "transactions"
	Budgets      Resource = "budgets"
)

// Key identifies one cached read.
type Key struct {
	Resource Resource
	Params   []any
}

// K builds a Key.
func K(r Resource, params ...any) Key {
	return Key{Resource: r, Params: params}
}

// String renders the key as a JSON array, e.g. ["budgets",3,2025].
// Struct params marshal field by field, so equal filters give equal keys.
func (k Key) String() string {
	parts := make([]any, 0, len(k.Params)+1)
	parts = append(parts, string(k.Resource))
	parts = append(parts, k.Params...)
	raw, err := json.Marshal(parts)
	if err != nil {
		return fmt.Sprintf("%s%v", k.Resource, k.Params)
	}
	return string(raw)
}

// Graph maps a resource to the resources that must be invalidated with it.
type Graph map[Resource][]Resource

// DefaultGraph is the dependency set of the finance API.
func DefaultGraph() Graph {
	return Graph{
		Transactions: {Budgets},
	}
}

// Closure returns the given resources plus everything reachable from them,
// sorted by name.
func (g Graph) Closure(rs ...Resource) []Resource {
	seen := make(map[Resource]bool)
	queue := append([]Resource(nil), rs...)
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]
		if seen[r] {
			continue
		}
		seen[r] = true
		queue = append(queue, g[r]...)
	}
	out := make([]Resource, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits          int
	Misses        int
	Entries       int
	Invalidations int
}

type entry struct {
	resource  Resource
	value     any
	fetchedAt time.Time
}

// Client is the cache. It is safe for concurrent use.
type Client struct {
	freshFor time.Duration
	graph    Graph
	now      func() time.Time
	log      *zap.SugaredLogger
	group    singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	gens    map[Resource]uint64
	stats   Stats
}

// Option configures a Client.
type Option func(*Client)

// WithGraph replaces the invalidation graph.
func WithGraph(g Graph) Option {
	return func(c *Client) { c.graph = g }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a cache whose entries stay fresh for freshFor.
func New(freshFor time.Duration, opts ...Option) *Client {
	c := &Client{
		freshFor: freshFor,
		graph:    DefaultGraph(),
		now:      time.Now,
		log:      logger.Named("query"),
		entries:  make(map[string]entry),
		gens:     make(map[Resource]uint64),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch returns the cached value for key if it is fresh, otherwise calls fn.
// Concurrent fetches of the same key share one call. A result whose fetch
// started before an invalidation of its resource is returned but not cached.
func Fetch[T any](ctx context.Context, c *Client, key Key, fn func(context.Context) (T, error)) (T, error) {
	k := key.String()
	if v, ok := c.lookup(k); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	gen := c.generation(key.Resource)
	flight := fmt.Sprintf("%s#%d", k, gen)
	v, err, _ := c.group.Do(flight, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key.Resource, k, val, gen)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Mutate runs fn and, on success, invalidates resource and its dependents
// before returning. Reads issued after Mutate returns never see data cached
// before the mutation.
func Mutate[T any](ctx context.Context, c *Client, resource Resource, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	c.Invalidate(resource)
	return v, nil
}

// Invalidate drops every entry for the given resources and everything the
// graph reaches from them.
func (c *Client) Invalidate(rs ...Resource) {
	closure := c.graph.Closure(rs...)
	hit := make(map[Resource]bool, len(closure))
	for _, r := range closure {
		hit[r] = true
	}

	c.mu.Lock()
	dropped := 0
	for _, r := range closure {
		c.gens[r]++
	}
	for k, e := range c.entries {
		if hit[e.resource] {
			delete(c.entries, k)
			dropped++
		}
	}
	c.stats.Invalidations++
	c.mu.Unlock()

	c.log.Debugw("invalidated", "resources", closure, "dropped", dropped)
}

// Clear drops everything, e.g. on logout.
func (c *Client) Clear() {
	c.mu.Lock()
	for _, r := range []Resource{Categories, Transactions, Budgets} {
		c.gens[r]++
	}
	for k, e := range c.entries {
		if _, known := c.gens[e.resource]; !known {
			c.gens[e.resource]++
		}
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// Stats returns a snapshot of cache counters.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = len(c.entries)
	return s
}

// Keys lists cached keys, sorted. Used by diagnostics.
func (c *Client) Keys() []string {
	c.mu.Lock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.Unlock()
	sort.Strings(keys)
	return keys
}

func (c *Client) lookup(k string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[k]
	if ok && c.now().Sub(e.fetchedAt) < c.freshFor {
		c.stats.Hits++
		return e.value, true
	}
	if ok {
		delete(c.entries, k)
	}
	c.stats.Misses++
	return nil, false
}

func (c *Client) generation(r Resource) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[r]
}

func (c *Client) store(r Resource, k string, v any, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[r] != gen {
		c.log.Debugw("discarding stale response", "key", k)
		return
	}
	if c.freshFor <= 0 {
		return
	}
	c.entries[k] = entry{resource: r, value: v, fetchedAt: c.now()}
}


package cache

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// keySep joins key parts. Unit separator cannot collide with the "/"
// inside composite record ids.
const keySep = "\x1f"

// Key builds a cache key from its parts. Parts mirror the query they
// cache: Key("club", id), Key("memberships", address), and so on.
func Key(parts ...string) string {
	return strings.Join(parts, keySep)
}

// Cache is a keyed snapshot cache.
//
// Concurrent fetches for the same key are deduplicated: one fetch runs,
// everyone waiting gets its result. Invalidation removes the snapshot
// and signals subscribers so they can refetch.
//
// Thread-safety: all methods are safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	subs    map[string][]chan struct{}
	group   singleflight.Group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]any),
		subs:    make(map[string][]chan struct{}),
	}
}

// Get returns the cached snapshot for key, if any.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores a snapshot. Callers must not mutate the value afterwards;
// store a clone when the value is shared.
func (c *Cache) Put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = v
}

// GetOrFetch returns the cached snapshot for key, or runs fetch to
// populate it. Concurrent callers for the same key share one in-flight
// fetch; a caller whose context expires stops waiting without
// cancelling the shared fetch.
func (c *Cache) GetOrFetch(ctx context.Context, key string, fetch func(ctx context.Context) (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the snapshots for the given keys and signals their
// subscribers. Unknown keys are a no-op.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.notifyLocked(key)
	}
}

// InvalidatePrefix drops every snapshot whose key starts with the given
// parts. Used for parameterized families like filtered club listings.
func (c *Cache) InvalidatePrefix(parts ...string) {
	prefix := Key(parts...)
	match := func(key string) bool {
		return key == prefix || strings.HasPrefix(key, prefix+keySep)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if match(key) {
			delete(c.entries, key)
		}
	}
	for key := range c.subs {
		if match(key) {
			c.notifyLocked(key)
		}
	}
}

// Subscribe returns a channel that signals whenever the key is
// invalidated. The channel is buffered with size one, so back-to-back
// invalidations coalesce into a single pending signal.
func (c *Cache) Subscribe(key string) <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[key] = append(c.subs[key], ch)
	c.mu.Unlock()
	return ch
}

func (c *Cache) notifyLocked(key string) {
	for _, ch := range c.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Package memocache provides the keyed, time-bounded memoization layer that
// fronts every remote read, plus exact-key and key-prefix invalidation for
// writes. The cache is an explicit object constructed at startup and injected
// into the data services, so tests can build and tear down their own instance.
package memocache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

type entry struct {
	payload  any
	storedAt time.Time
}

// Cache is a process-local key-value store with per-entry write timestamps.
// Entries older than the caller-supplied max age are treated as absent and
// never served. Writes are last-write-wins: concurrent identical calls may
// both miss and both populate the same key without correctness impact.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	// now is swappable in tests to control entry age
	now func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key builds a full cache key from a logical operation name and its call
// arguments: op + ":" + the JSON-serialized argument list. Identical calls
// always produce identical keys, and every key for op shares the op prefix.
func Key(op string, args ...any) string {
	if len(args) == 0 {
		return op
	}
	data, err := json.Marshal(args)
	if err != nil {
		return op + ":" + fmt.Sprint(args...)
	}
	return op + ":" + string(data)
}

// Get returns the live payload stored under fullKey, or false if the key is
// absent or its entry is older than maxAge.
func (c *Cache) Get(fullKey string, maxAge time.Duration) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[fullKey]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) > maxAge {
		return nil, false
	}
	return e.payload, true
}

// Put stores payload under fullKey with the current timestamp.
func (c *Cache) Put(fullKey string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fullKey] = entry{payload: payload, storedAt: c.now()}
}

// Invalidate removes the entry stored under exactly fullKey.
func (c *Cache) Invalidate(fullKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, fullKey)
}

// InvalidatePrefix removes every entry whose key begins with prefix.
// Argument-serialized keys are not individually known to writers, so this is
// how "every cached page of published posts" gets dropped after a write.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of stored entries, live or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Do runs fetch memoized under fullKey. A live entry is returned without
// invoking fetch. On a miss, fetch runs and its result is stored on success.
// If fetch fails and fallback is non-nil, fallback runs with the same context
// and its result is returned without being cached; with no fallback the fetch
// error propagates.
func Do[T any](ctx context.Context, c *Cache, fullKey string, maxAge time.Duration,
	fetch func(context.Context) (T, error),
	fallback func(context.Context) (T, error),
) (T, error) {
	if v, ok := c.Get(fullKey, maxAge); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
		// A different op reused the key with another type; treat as a miss.
		c.Invalidate(fullKey)
	}

	out, err := fetch(ctx)
	if err != nil {
		if fallback != nil {
			return fallback(ctx)
		}
		var zero T
		return zero, err
	}

	c.Put(fullKey, out)
	return out, nil
}

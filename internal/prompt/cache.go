package prompt

import (
	"sync"
	"time"

	"github.com/noshsh/nosh/internal/prompt/plugins"
)

// cacheEntry is one cached variable value. A zero expiry means the value
// never expires (sticky until reload).
type cacheEntry struct {
	value   string
	written time.Time
	expiry  time.Time
}

// Cache is the shared value cache, keyed by variable key. It is mutated by
// concurrent fetch tasks and read by the resolution loop; the lock is held
// only for map access, never across I/O.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: map[string]cacheEntry{}}
}

// Lookup returns the cached value for key. fresh reports whether the entry
// has not expired; ok reports whether anything is stored at all. A stale
// value is still returned so callers can fall back to it.
func (c *Cache) Lookup(key string, now time.Time) (value string, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false, false
	}
	fresh = entry.expiry.IsZero() || entry.expiry.After(now)
	return entry.value, fresh, true
}

// Store writes a fetched value under the provider's cache policy:
// PolicyAlways stores it immediately stale, PolicyNever stores it without
// expiry, PolicyTTL stores it fresh until now+TTL.
func (c *Cache) Store(key, value string, policy plugins.CachePolicy, now time.Time) {
	entry := cacheEntry{value: value, written: now}
	switch policy.Mode {
	case plugins.PolicyAlways:
		entry.expiry = now
	case plugins.PolicyNever:
		// zero expiry: sticky
	case plugins.PolicyTTL:
		entry.expiry = now.Add(policy.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
}

// WrittenAt returns when the entry for key was written, for diagnostics.
func (c *Cache) WrittenAt(key string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	return entry.written, ok
}

// Clear drops every entry. Used on explicit reload.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]cacheEntry{}
}

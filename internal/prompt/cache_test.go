package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noshsh/nosh/internal/prompt/plugins"
)

func TestCacheLookupMiss(t *testing.T) {
	c := NewCache()
	value, fresh, ok := c.Lookup("p:v", time.Now())
	assert.Equal(t, "", value)
	assert.False(t, fresh)
	assert.False(t, ok)
}

func TestCacheTTL(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.Store("p:v", "hello", plugins.CachePolicy{Mode: plugins.PolicyTTL, TTL: 500 * time.Millisecond}, now)

	value, fresh, ok := c.Lookup("p:v", now.Add(400*time.Millisecond))
	assert.Equal(t, "hello", value)
	assert.True(t, fresh)
	assert.True(t, ok)

	// Past the TTL the value is stale but still returned as a fallback.
	value, fresh, ok = c.Lookup("p:v", now.Add(600*time.Millisecond))
	assert.Equal(t, "hello", value)
	assert.False(t, fresh)
	assert.True(t, ok)
}

func TestCacheAlwaysStoresStale(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.Store("p:v", "hello", plugins.CachePolicy{Mode: plugins.PolicyAlways}, now)

	value, fresh, ok := c.Lookup("p:v", now.Add(time.Nanosecond))
	assert.Equal(t, "hello", value)
	assert.False(t, fresh, "always-policy entries are stale from the start")
	assert.True(t, ok)
}

func TestCacheNeverExpires(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.Store("p:v", "hello", plugins.CachePolicy{Mode: plugins.PolicyNever}, now)

	value, fresh, ok := c.Lookup("p:v", now.Add(24*time.Hour))
	assert.Equal(t, "hello", value)
	assert.True(t, fresh)
	assert.True(t, ok)

	c.Clear()
	_, _, ok = c.Lookup("p:v", now)
	assert.False(t, ok)
}

func TestCacheWrittenAt(t *testing.T) {
	c := NewCache()
	now := time.Now()
	c.Store("p:v", "hello", plugins.CachePolicy{Mode: plugins.PolicyTTL, TTL: time.Second}, now)

	written, ok := c.WrittenAt("p:v")
	assert.True(t, ok)
	assert.Equal(t, now, written)

	_, ok = c.WrittenAt("p:other")
	assert.False(t, ok)
}

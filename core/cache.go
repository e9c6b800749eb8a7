package core

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

var cacheNowFunc = time.Now // mockable

// Cache is a time-boxed memoization map with a single fixed TTL per instance.
// Eviction is lazy: expiry is checked on Get, a stale entry is simply
// overwritten on the next Set. It only bounds latency/load; consumers must
// tolerate a miss by recomputing from the data store.
//
// Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value interface{}
	setAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key, or ok=false on a miss or an expired entry.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if cacheNowFunc().Sub(entry.setAt) > c.ttl {
		return nil, false
	}
	return entry.value, true
}

func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, setAt: cacheNowFunc()}
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Flush drops all entries.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// CacheKey joins parts into a composite cache key.
func CacheKey(parts ...interface{}) string {
	strs := make([]string, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			strs = append(strs, v)
		case int:
			strs = append(strs, strconv.Itoa(v))
		default:
			strs = append(strs, "?")
		}
	}
	return strings.Join(strs, ":")
}

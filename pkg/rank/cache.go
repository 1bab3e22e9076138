package rank

import (
	"sync"
	"time"

	"github.com/voidmaw/hotdaily/pkg/source"
)

type cacheKey struct {
	section string
	limit   int
}

type cacheEntry struct {
	items   []source.HotItem
	expires time.Time
}

// Cache holds fetched section results for a fixed TTL. Entries are keyed by
// (section, per-source limit); an expired entry is recomputed on the next
// lookup, there is no background eviction.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[cacheKey]cacheEntry
}

// NewCache creates a cache with the given TTL. now is the clock; nil means
// time.Now.
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[cacheKey]cacheEntry),
	}
}

// Get returns the cached items for (section, limit) when still fresh.
func (c *Cache) Get(section string, limit int) ([]source.HotItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey{section, limit}]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.items, true
}

// Put stores items for (section, limit), restarting its TTL.
func (c *Cache) Put(section string, limit int, items []source.HotItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey{section, limit}] = cacheEntry{
		items:   items,
		expires: c.now().Add(c.ttl),
	}
}

// Flush drops every entry. Used by the manual report path to force a refetch.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]cacheEntry)
}

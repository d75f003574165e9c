package marketdata

import (
	"sync"
	"time"

	"github.com/optionflow/options-engine/src/optionmodels"
)

// SnapshotCache holds market snapshots keyed by symbol.
type SnapshotCache = Cache[optionmodels.MarketSnapshot]

func NewSnapshotCache(ttl time.Duration, clock func() time.Time) *SnapshotCache {
	return NewCache[optionmodels.MarketSnapshot](ttl, clock)
}

// Cache is a thread-safe cache with per-entry expiry, meant for market data
// the excluded retrieval layer would otherwise re-fetch (spot prices,
// dividend yields, option chains). The clock is injected so expiry is
// testable; production callers pass time.Now. Expired entries are evicted
// on read.
type Cache[V any] struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

type CacheStats struct {
	Entries int
	TTL     time.Duration
}

func NewCache[V any](ttl time.Duration, clock func() time.Time) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}

	if c.clock().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}

	return entry.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry[V]{value: value, storedAt: c.clock()}
}

func (c *Cache[V]) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *Cache[V]) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry[V])
}

func (c *Cache[V]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CacheStats{
		Entries: len(c.entries),
		TTL:     c.ttl,
	}
}

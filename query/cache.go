package query

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

type cacheEntry struct {
	results   []Result
	expiresAt time.Time
}

// resultCache memoizes fully-ranked result lists keyed by the
// normalized query expression. Entries expire after a fixed TTL and
// the cache never holds more than maxEntries lists. A per-key inflight
// gate ensures concurrent searches for the same expression run the
// pipeline once.
type resultCache struct {
	clk        clock.Clock
	ttl        time.Duration
	maxEntries int

	mu       sync.Mutex
	entries  map[string]*cacheEntry
	inflight map[string]chan struct{}
}

func newResultCache(clk clock.Clock, ttl time.Duration, maxEntries int) *resultCache {
	return &resultCache{
		clk:        clk,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
		inflight:   make(map[string]chan struct{}),
	}
}

func (c *resultCache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	if c.clk.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

func (c *resultCache) put(key string, results []Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = &cacheEntry{
		results:   results,
		expiresAt: c.clk.Now().Add(c.ttl),
	}
}

// acquire registers the caller as the computation leader for key. When
// another caller already holds the key, the returned channel is closed
// once that computation completes.
func (c *resultCache) acquire(key string) (leader bool, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, exists := c.inflight[key]; exists {
		return false, ch
	}
	ch := make(chan struct{})
	c.inflight[key] = ch
	return true, ch
}

func (c *resultCache) release(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, exists := c.inflight[key]; exists {
		close(ch)
		delete(c.inflight, key)
	}
}

// Purge drops every cached result list. The indexer invalidates the
// cache this way after rebuilding the index.
func (c *resultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// evictExpired removes entries whose TTL has lapsed.
func (c *resultCache) evictExpired() {
	now := c.clk.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *resultCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestExp time.Time
	)
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestExp) {
			oldestKey, oldestExp = key, entry.expiresAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *resultCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

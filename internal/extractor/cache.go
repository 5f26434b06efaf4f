package extractor

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a resolved direct URL may be reused.
// Upstream URLs carry their own expiry, so this stays short.
const DefaultCacheTTL = 300 * time.Second

type cacheEntry struct {
	url        string
	resolvedAt time.Time
}

// URLCache maps a source id to its last resolved direct URL. Entries are
// process-local and best-effort: staleness is checked on read and stale
// entries are evicted, there is no background sweep.
type URLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

func NewURLCache(ttl time.Duration) *URLCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &URLCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached URL for sourceID if it is still fresh. A stale
// entry is removed and reported as a miss.
func (c *URLCache) Get(sourceID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[sourceID]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.resolvedAt) >= c.ttl {
		delete(c.entries, sourceID)
		return "", false
	}
	return entry.url, true
}

func (c *URLCache) Put(sourceID, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[sourceID] = cacheEntry{url: url, resolvedAt: c.now()}
}

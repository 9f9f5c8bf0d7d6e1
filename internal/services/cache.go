package services

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// responseCache holds decoded-ready response bodies keyed by request URL.
//
// A nil *responseCache is valid and never hits.
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	if ttl <= 0 {
		return nil
	}
	return &responseCache{entries: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *responseCache) get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *responseCache) set(key string, body []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if c.now().After(e.expires) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cacheEntry{body: body, expires: c.now().Add(c.ttl)}
}

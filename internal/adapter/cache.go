package adapter

import (
	"sync"
	"time"
)

// OptionCache memoizes fetched facet options per site and facet so that
// repeated "options" lookups within one process do not re-hit the site.
// Entries record when they were fetched; callers decide staleness via the
// TTL given at construction.
type OptionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]optionEntry
	now     func() time.Time
}

type optionEntry struct {
	sets      []OptionSet
	fetchedAt time.Time
}

// NewOptionCache creates a cache whose entries expire after ttl. A zero ttl
// means entries never expire.
func NewOptionCache(ttl time.Duration) *OptionCache {
	return &OptionCache{
		ttl:     ttl,
		entries: make(map[string]optionEntry),
		now:     time.Now,
	}
}

// Get returns the cached option sets for a site along with when they were
// fetched. The second return is false on miss or expiry.
func (c *OptionCache) Get(site string) ([]OptionSet, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[site]
	if !ok {
		return nil, time.Time{}, false
	}
	if c.ttl > 0 && c.now().Sub(e.fetchedAt) > c.ttl {
		delete(c.entries, site)
		return nil, time.Time{}, false
	}
	return e.sets, e.fetchedAt, true
}

// Put stores freshly fetched option sets for a site.
func (c *OptionCache) Put(site string, sets []OptionSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[site] = optionEntry{sets: sets, fetchedAt: c.now()}
}

// Invalidate drops the cached entry for one site.
func (c *OptionCache) Invalidate(site string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, site)
}

// InvalidateAll drops every cached entry.
func (c *OptionCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]optionEntry)
}

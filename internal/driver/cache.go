package driver

import (
	"sync"
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// EntityCache is a short-TTL map from unique-constraint fingerprints to
// entities. The write path fills it after every put; single-query reads
// whose equality filters cover a unique constraint probe it before hitting
// the store, which bypasses the eventually-consistent scan path. Entries
// are never invalidated on update or delete; the TTL bounds staleness.
//
// The cache is purely advisory: a lost entry costs a datastore round-trip,
// never correctness.
type EntityCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	entity  *types.Entity
	expires time.Time
}

// NewEntityCache creates a cache with the given TTL. A non-positive TTL
// falls back to types.DefaultCacheTTL.
func NewEntityCache(ttl time.Duration) *EntityCache {
	if ttl <= 0 {
		ttl = types.DefaultCacheTTL
	}
	return &EntityCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Put stores the entity under every supplied fingerprint key. One entity
// may be reachable through several unique constraints.
func (c *EntityCache) Put(keys []string, entity *types.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	for _, key := range keys {
		c.entries[key] = cacheEntry{entity: entity, expires: expires}
	}
}

// Get returns the cached entity for the fingerprint, or a miss. Expired
// entries are evicted on access.
func (c *EntityCache) Get(key string) (*types.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.entity, true
}

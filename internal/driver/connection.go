package driver

import (
	"github.com/mesh-intelligence/kindling/internal/datastore"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Compile-time interface check: Connection must implement types.Connection.
var _ types.Connection = (*Connection)(nil)

// Connection binds the translation layer to a datastore and an entity
// cache. The datastore keeps no per-connection state, so the DB-API
// transactional surface is a set of no-ops.
type Connection struct {
	store  datastore.Store
	cache  *EntityCache
	config types.Config
}

// NewConnection creates a connection over an attached store. The cache is
// an injected dependency; passing nil builds one with the configured TTL.
func NewConnection(store datastore.Store, cache *EntityCache, cfg types.Config) *Connection {
	if cache == nil {
		cache = NewEntityCache(cfg.CacheTTL())
	}
	return &Connection{store: store, cache: cache, config: cfg}
}

// Rollback does nothing: transactions are not supported.
func (c *Connection) Rollback() error { return nil }

// Commit does nothing: writes are persisted when the cursor executes them.
func (c *Connection) Commit() error { return nil }

// Close releases the underlying store. Idempotent.
func (c *Connection) Close() error {
	return c.store.Close()
}

// Begin fails: the driver advertises no transaction support.
func (c *Connection) Begin() error {
	return types.ErrTransactions
}

// NewCursor returns a fresh cursor bound to this connection.
func (c *Connection) NewCursor() types.Cursor {
	return &Cursor{conn: c}
}

// GetTableList returns the kinds known to the datastore.
func (c *Connection) GetTableList() ([]string, error) {
	return c.store.Kinds()
}

// FlushKinds deletes every entity of the given kinds. Used by test
// teardown and the CLI; production code has no delete path.
func (c *Connection) FlushKinds(kinds []string) error {
	for _, kind := range kinds {
		if err := c.store.Flush(kind); err != nil {
			return err
		}
	}
	return nil
}

// Cache exposes the entity cache, mainly so tests can inspect it.
func (c *Connection) Cache() *EntityCache {
	return c.cache
}

// cacheEntity computes every unique fingerprint of the entity and stores
// it under all of them.
func (c *Connection) cacheEntity(model *types.Model, entity *types.Entity) {
	combos := UniqueCombinations(model)
	if len(combos) == 0 {
		return
	}
	keys := make([]string, 0, len(combos))
	for _, combo := range combos {
		pairs := make([]FieldValue, 0, len(combo))
		for _, column := range combo {
			pairs = append(pairs, FieldValue{Column: column, Value: entity.Get(column)})
		}
		keys = append(keys, FingerprintKey(model, pairs))
	}
	c.cache.Put(keys, entity)
}

// Package datastore provides the kind-scoped entity store the driver is
// written against, with an embedded SQLite-backed implementation so the
// whole stack runs locally without a datastore service.
package datastore

import "github.com/mesh-intelligence/kindling/pkg/types"

// Store is the narrow datastore surface the driver consumes: kind-scoped
// queries with continuation, multi-queries, batch puts, and kind
// introspection.
type Store interface {
	// RunQuery evaluates one native query. A positive limit caps the page
	// size; startCursor resumes from a previously returned continuation
	// token. The returned token is empty when the page is empty.
	RunQuery(q *types.Query, limit int, startCursor string) ([]*types.Entity, string, error)

	// RunMulti evaluates a set of native queries and concatenates their
	// results. Multi-queries do not support continuation.
	RunMulti(queries []*types.Query) ([]*types.Entity, error)

	// Put persists the entities in one batch and returns their assigned
	// keys in insertion order.
	Put(entities []*types.Entity) ([]types.Key, error)

	// Kinds lists the kinds known to the store.
	Kinds() ([]string, error)

	// Flush deletes every entity of the given kind.
	Flush(kind string) error

	// Close releases the store's resources. Idempotent.
	Close() error
}

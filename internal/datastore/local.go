package datastore

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

// Compile-time interface check: LocalStore must implement Store.
var _ Store = (*LocalStore)(nil)

// LocalStore implements Store on an embedded SQLite database. Entities are
// rows keyed by an autoincrement id (the assigned integer key); filters are
// evaluated over the decoded property maps with datastore comparison
// semantics. Continuation tokens are opaque handles mapped to the last
// rowid a page returned.
type LocalStore struct {
	mu       sync.RWMutex
	attached bool
	db       *sql.DB

	cursorMu sync.Mutex
	cursors  map[string]int64 // continuation token -> last returned rowid
}

// NewLocalStore creates a new embedded store. The store is not attached;
// call Attach with a Config to initialize.
func NewLocalStore() *LocalStore {
	return &LocalStore{
		cursors: make(map[string]int64),
	}
}

// Attach opens (or creates) the database under cfg.DataDir and initializes
// the schema. Returns ErrAlreadyAttached if already attached.
func (s *LocalStore) Attach(cfg types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "kindling.db"))
	if err != nil {
		return err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return err
	}

	s.db = db
	s.attached = true
	return nil
}

// Detach closes the database. After Detach, all operations return
// ErrStoreDetached. Idempotent.
func (s *LocalStore) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return err
		}
		s.db = nil
	}
	s.attached = false

	s.cursorMu.Lock()
	s.cursors = make(map[string]int64)
	s.cursorMu.Unlock()

	return nil
}

// Close releases the store. It is the Store-interface name for Detach.
func (s *LocalStore) Close() error {
	return s.Detach()
}

// newToken generates an opaque continuation-token handle (UUID v7, falling
// back to v4 if v7 generation fails).
func newToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// RunQuery evaluates one native query against the store.
func (s *LocalStore) RunQuery(q *types.Query, limit int, startCursor string) ([]*types.Entity, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, "", types.ErrStoreDetached
	}

	afterID := int64(0)
	if startCursor != "" {
		s.cursorMu.Lock()
		pos, ok := s.cursors[startCursor]
		s.cursorMu.Unlock()
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", types.ErrUnknownCursor, startCursor)
		}
		afterID = pos
	}

	entities, lastID, err := s.runQueryLocked(q, limit, afterID)
	if err != nil {
		return nil, "", err
	}
	if len(entities) == 0 {
		return entities, "", nil
	}

	token := newToken()
	s.cursorMu.Lock()
	s.cursors[token] = lastID
	s.cursorMu.Unlock()

	return entities, token, nil
}

// RunMulti evaluates every query and concatenates the results. Order across
// shards follows the query list; within a shard it is stable by key.
func (s *LocalStore) RunMulti(queries []*types.Query) ([]*types.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	var all []*types.Entity
	for _, q := range queries {
		entities, _, err := s.runQueryLocked(q, 0, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, entities...)
	}
	return all, nil
}

// runQueryLocked scans the kind in rowid order, evaluates the filters over
// decoded properties, and returns up to limit matches plus the rowid of the
// last one. The caller must hold s.mu.
func (s *LocalStore) runQueryLocked(q *types.Query, limit int, afterID int64) ([]*types.Entity, int64, error) {
	rows, err := s.db.Query(
		"SELECT id, name, props FROM entities WHERE kind = ? AND id > ? ORDER BY id",
		q.Kind, afterID,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("scanning kind %s: %w", q.Kind, err)
	}
	defer rows.Close()

	var (
		matched []*types.Entity
		lastID  int64
	)
	for rows.Next() {
		var (
			id    int64
			name  string
			blob  string
			props map[string]any
		)
		if err := rows.Scan(&id, &name, &blob); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(blob), &props); err != nil {
			return nil, 0, fmt.Errorf("decoding entity %d: %w", id, err)
		}

		entity := &types.Entity{
			Kind:       q.Kind,
			Key:        types.Key{Kind: q.Kind, ID: id, Name: name},
			Properties: props,
		}
		if !matchEntity(entity, q.Filters) {
			continue
		}

		matched = append(matched, project(entity, q.Projection))
		lastID = id
		if limit > 0 && len(matched) >= limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return matched, lastID, nil
}

// project returns the entity restricted to the projected columns, or the
// entity itself when there is no projection.
func project(e *types.Entity, projection []string) *types.Entity {
	if len(projection) == 0 {
		return e
	}
	p := &types.Entity{Kind: e.Kind, Key: e.Key, Properties: make(map[string]any, len(projection))}
	for _, col := range projection {
		if v, ok := e.Properties[col]; ok {
			p.Properties[col] = v
		}
	}
	return p
}

// Put persists the entities in one transaction. Entities carrying a string
// name keep it; all others receive the autoincrement rowid as their integer
// id. Keys are written back into the entities and returned in order.
func (s *LocalStore) Put(entities []*types.Entity) ([]types.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	keys := make([]types.Key, 0, len(entities))
	for _, e := range entities {
		blob, err := json.Marshal(e.Properties)
		if err != nil {
			return nil, fmt.Errorf("encoding %s entity: %w", e.Kind, err)
		}

		res, err := tx.Exec(
			"INSERT INTO entities (kind, name, props) VALUES (?, ?, ?)",
			e.Kind, e.Key.Name, string(blob),
		)
		if err != nil {
			return nil, fmt.Errorf("putting %s entity: %w", e.Kind, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}

		key := types.Key{Kind: e.Kind, ID: id, Name: e.Key.Name}
		e.Key = key
		keys = append(keys, key)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Kinds lists the distinct kinds present in the store, sorted.
func (s *LocalStore) Kinds() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := s.db.Query("SELECT DISTINCT kind FROM entities ORDER BY kind")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var kinds []string
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, rows.Err()
}

// Flush deletes every entity of the given kind.
func (s *LocalStore) Flush(kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return types.ErrStoreDetached
	}
	_, err := s.db.Exec("DELETE FROM entities WHERE kind = ?", kind)
	return err
}

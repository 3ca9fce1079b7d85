// Shared fixtures for driver tests: representative models and a scripted
// in-memory store.
package driver

import (
	"fmt"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// postModel is Post(id PK, slug unique, title, author FK -> author kind).
func postModel() *types.Model {
	author := &types.Model{
		AppLabel: "blog",
		Kind:     "author",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "name", Column: "name", Storage: types.StorageString},
		},
	}
	return &types.Model{
		AppLabel: "blog",
		Kind:     "post",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "slug", Column: "slug", Storage: types.StorageString, Unique: true},
			{Name: "title", Column: "title", Storage: types.StorageString, Nullable: true},
			{Name: "author", Column: "author_id", Storage: types.StorageKey, Nullable: true, Relation: author},
		},
	}
}

// docModel is Doc(id PK, title, body text) for projection-guard tests.
func docModel() *types.Model {
	return &types.Model{
		AppLabel: "docs",
		Kind:     "doc",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "title", Column: "title", Storage: types.StorageString},
			{Name: "body", Column: "body", Storage: types.StorageText, Nullable: true},
		},
	}
}

// memberModel has a composite unique constraint over (org, email).
func memberModel() *types.Model {
	return &types.Model{
		AppLabel: "crm",
		Kind:     "member",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "org", Column: "org", Storage: types.StorageString},
			{Name: "email", Column: "email", Storage: types.StorageString, Unique: true},
		},
		UniqueTogether: [][]string{{"org", "email"}},
	}
}

// eq builds an exact-match leaf against a model field.
func eq(m *types.Model, name string, value any) types.Leaf {
	f := m.FieldByName(name)
	return types.Leaf{Column: f.Column, Field: f, Lookup: types.LookupExact, Value: value}
}

// leaf builds a lookup leaf against a model field.
func leaf(m *types.Model, name string, lookup types.Lookup, value any) types.Leaf {
	f := m.FieldByName(name)
	return types.Leaf{Column: f.Column, Field: f, Lookup: lookup, Value: value}
}

// fakeStore is a scripted datastore: RunQuery returns pre-canned pages in
// order, RunMulti returns a canned concatenation, Put assigns sequential
// integer keys. Every call is recorded for assertions.
type fakeStore struct {
	pages       [][]*types.Entity
	multiResult []*types.Entity

	runCalls    int
	runQueries  []*types.Query
	runCursors  []string
	multiCalls  [][]*types.Query
	putEntities []*types.Entity

	nextID int64
	kinds  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 100}
}

func (s *fakeStore) RunQuery(q *types.Query, limit int, startCursor string) ([]*types.Entity, string, error) {
	s.runQueries = append(s.runQueries, q)
	s.runCursors = append(s.runCursors, startCursor)

	if s.runCalls >= len(s.pages) {
		s.runCalls++
		return nil, "", nil
	}
	page := s.pages[s.runCalls]
	s.runCalls++
	if len(page) == 0 {
		return nil, "", nil
	}
	return page, fmt.Sprintf("cursor-%d", s.runCalls), nil
}

func (s *fakeStore) RunMulti(queries []*types.Query) ([]*types.Entity, error) {
	s.multiCalls = append(s.multiCalls, queries)
	return s.multiResult, nil
}

func (s *fakeStore) Put(entities []*types.Entity) ([]types.Key, error) {
	keys := make([]types.Key, 0, len(entities))
	for _, e := range entities {
		s.nextID++
		key := types.Key{Kind: e.Kind, ID: s.nextID, Name: e.Key.Name}
		e.Key = key
		keys = append(keys, key)
		s.putEntities = append(s.putEntities, e)
	}
	return keys, nil
}

func (s *fakeStore) Kinds() ([]string, error) { return s.kinds, nil }

func (s *fakeStore) Flush(kind string) error { return nil }

func (s *fakeStore) Close() error { return nil }

// newTestConnection wires a connection over a fake store with a fresh
// cache.
func newTestConnection(store *fakeStore) *Connection {
	return NewConnection(store, NewEntityCache(0), types.Config{AppLabel: "blog"})
}

// Package integration exercises the full stack: driver over the embedded
// datastore, no fakes.
package integration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/kindling/internal/datastore"
	"github.com/mesh-intelligence/kindling/internal/driver"
	"github.com/mesh-intelligence/kindling/pkg/types"
)

// newAttachedConnection attaches an embedded store under a temp directory
// and wires a connection over it. Teardown detaches the store.
func newAttachedConnection(t *testing.T) *driver.Connection {
	t.Helper()

	store := datastore.NewLocalStore()
	cfg := types.Config{DataDir: t.TempDir(), AppLabel: "blog"}
	require.NoError(t, store.Attach(cfg))
	t.Cleanup(func() { _ = store.Detach() })

	return driver.NewConnection(store, nil, cfg)
}

// blogModels returns Post(id PK, slug unique, title, author FK) and its
// parent Author(id PK, name) models.
func blogModels() (post, author *types.Model) {
	author = &types.Model{
		AppLabel: "blog",
		Kind:     "author",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "name", Column: "name", Storage: types.StorageString},
		},
	}
	post = &types.Model{
		AppLabel: "blog",
		Kind:     "post",
		Fields: []*types.Field{
			{Name: "id", Column: "id", Storage: types.StorageKey, PrimaryKey: true},
			{Name: "slug", Column: "slug", Storage: types.StorageString, Unique: true},
			{Name: "title", Column: "title", Storage: types.StorageString, Nullable: true},
			{Name: "author", Column: "author_id", Storage: types.StorageKey, Nullable: true, Relation: author},
		},
	}
	return post, author
}

// docModel returns Doc(id PK, title, body text) for projection scenarios.
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

// insertRows pushes rows through the write path and returns the cursor so
// callers can read LastRowID.
func insertRows(t *testing.T, conn *driver.Connection, m *types.Model, fieldNames []string, rows []types.Row) types.Cursor {
	t.Helper()

	fields := make([]*types.Field, 0, len(fieldNames))
	for _, name := range fieldNames {
		f := m.FieldByName(name)
		require.NotNil(t, f, "unknown field %s", name)
		fields = append(fields, f)
	}

	cursor := conn.NewCursor()
	require.NoError(t, cursor.ExecuteQuery(m, &types.InsertStatement{
		Fields: fields,
		Rows:   rows,
		Raw:    true,
	}))
	return cursor
}

// fetchAll drains a select through FetchMany pages of the given size.
func fetchAll(t *testing.T, cursor types.Cursor, size int) [][]any {
	t.Helper()

	var all [][]any
	for {
		rows, err := cursor.FetchMany(size)
		require.NoError(t, err)
		if len(rows) == 0 {
			return all
		}
		all = append(all, rows...)
	}
}

// exactLeaf builds an exact-match leaf for a model field.
func exactLeaf(m *types.Model, name string, value any) types.Leaf {
	f := m.FieldByName(name)
	return types.Leaf{Column: f.Column, Field: f, Lookup: types.LookupExact, Value: value}
}

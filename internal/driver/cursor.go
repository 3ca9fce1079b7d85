package driver

import (
	"fmt"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// Compile-time interface check: Cursor must implement types.Cursor.
var _ types.Cursor = (*Cursor)(nil)

// Cursor holds one lowered query (or multi-query fan-out), pages through
// its results, and remembers the keys assigned by the last insert. One
// cursor is driven by at most one caller at a time.
type Cursor struct {
	conn *Connection

	model       *types.Model
	queries     []*types.Query
	flatFilters []types.Filter
	queriedCols []string

	started     bool
	done        bool
	startCursor string

	returnedKeys []types.Key
}

// Execute always fails: this layer never processes SQL strings. Use
// ExecuteQuery with an ORM statement instead.
func (c *Cursor) Execute(sql string, params ...any) error {
	return fmt.Errorf("%w: %q", types.ErrSQLNotSupported, sql)
}

// ExecuteQuery accepts an ORM statement directly and prepares the cursor
// for FetchMany (selects) or LastRowID (inserts).
func (c *Cursor) ExecuteQuery(model *types.Model, stmt types.Statement) error {
	switch s := stmt.(type) {
	case *types.SelectQuery:
		return c.executeSelect(model, s)
	case *types.InsertStatement:
		return c.executeInsert(model, s)
	default:
		return fmt.Errorf("%w: statement %T", types.ErrDatabase, stmt)
	}
}

// executeSelect lowers the WHERE tree and records the output columns in
// the caller's requested order, with the primary key rewritten to the
// reserved key column so result rows can unwrap it to id-or-name. The
// projection sent to the store excludes the key column: keys always come
// back with the entity.
func (c *Cursor) executeSelect(model *types.Model, stmt *types.SelectQuery) error {
	pk := model.PK()
	if pk == nil {
		return types.ErrNoPrimaryKey
	}

	cols := stmt.Columns
	var projection []string
	if len(cols) == 0 {
		cols = model.Columns()
	} else {
		for _, col := range cols {
			if col != pk.Column {
				projection = append(projection, col)
			}
		}
	}

	queried := make([]string, len(cols))
	copy(queried, cols)
	for i, col := range queried {
		if col == pk.Column {
			queried[i] = types.KeyColumn
		}
	}

	queries, flat, err := newLowerer(model, projection).lower(stmt.Where)
	if err != nil {
		return err
	}

	c.model = model
	c.queries = queries
	c.flatFilters = flat
	c.queriedCols = queried
	c.started = false
	c.done = false
	c.startCursor = ""
	return nil
}

// FetchMany returns up to size result rows. Multi-query fan-outs run to
// completion on the first call (they carry no continuation); single
// queries probe the entity cache first, then page through the store with
// a continuation token, exhausting on the first empty page.
func (c *Cursor) FetchMany(size int) ([][]any, error) {
	if c.done {
		return [][]any{}, nil
	}
	if len(c.queries) == 0 {
		return nil, types.ErrNoQuery
	}

	var (
		results []*types.Entity
		err     error
	)
	switch {
	case len(c.queries) > 1:
		results, err = c.conn.store.RunMulti(c.queries)
		if err != nil {
			return nil, err
		}
		c.done = true

	default:
		if entity, ok := c.probeCache(); ok {
			results = []*types.Entity{entity}
			c.done = true
			c.startCursor = ""
			break
		}
		var token string
		results, token, err = c.conn.store.RunQuery(c.queries[0], size, c.startCursor)
		if err != nil {
			return nil, err
		}
		c.startCursor = token
		c.done = len(results) == 0
	}
	c.started = true

	rows := make([][]any, 0, len(results))
	for _, entity := range results {
		row := make([]any, len(c.queriedCols))
		for i, col := range c.queriedCols {
			if col == types.KeyColumn {
				row[i] = entity.Key.IDOrName()
			} else {
				row[i] = entity.Get(col)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// probeCache consults the entity cache before the first round-trip. The
// probe fires only when the query's equality filters fully cover at least
// one unique constraint of the model; the first covered constraint whose
// fingerprint is cached wins.
func (c *Cursor) probeCache() (*types.Entity, bool) {
	if c.started || c.model == nil || len(c.flatFilters) == 0 {
		return nil, false
	}

	lookup := make(map[string]any)
	for _, f := range c.flatFilters {
		if f.Op == types.OpEqual {
			lookup[f.Column] = f.Value
		}
	}
	if len(lookup) == 0 {
		return nil, false
	}

	for _, combo := range UniqueCombinations(c.model) {
		pairs := make([]FieldValue, 0, len(combo))
		covered := true
		for _, column := range combo {
			value, ok := lookup[column]
			if !ok {
				covered = false
				break
			}
			pairs = append(pairs, FieldValue{Column: column, Value: value})
		}
		if !covered {
			continue
		}
		key := FingerprintKey(c.model, pairs)
		if entity, ok := c.conn.cache.Get(key); ok {
			return entity, true
		}
	}
	return nil, false
}

// executeInsert converts every row to an entity, persists the batch, and
// write-throughs the cache under every unique fingerprint so immediate
// point reads skip the eventually-consistent scan path.
func (c *Cursor) executeInsert(model *types.Model, stmt *types.InsertStatement) error {
	pk := model.PK()
	if pk == nil {
		return types.ErrNoPrimaryKey
	}

	entities := make([]*types.Entity, 0, len(stmt.Rows))
	for _, row := range stmt.Rows {
		entity, err := instanceToEntity(model, stmt.Fields, stmt.Raw, row)
		if err != nil {
			return err
		}
		entities = append(entities, entity)
	}

	keys, err := c.conn.store.Put(entities)
	if err != nil {
		return err
	}

	c.returnedKeys = keys
	for i, entity := range entities {
		entity.Set(pk.Column, keys[i].IDOrName())
		c.conn.cacheEntity(model, entity)
	}

	c.model = model
	c.queries = nil
	c.done = true
	return nil
}

// LastRowID returns the id-or-name of the most recently persisted key.
func (c *Cursor) LastRowID() (any, error) {
	if len(c.returnedKeys) == 0 {
		return nil, types.ErrNoRowsInserted
	}
	return c.returnedKeys[len(c.returnedKeys)-1].IDOrName(), nil
}

// instanceToEntity builds a kind-tagged entity from one ORM row: per
// field, the raw attribute (raw mode) or the pre-save hook's value, passed
// through the storage-prep hook. A nil value in a non-nullable
// non-primary-key field is an integrity violation.
func instanceToEntity(model *types.Model, fields []*types.Field, raw bool, row types.Row) (*types.Entity, error) {
	entity := types.NewEntity(model.Kind)
	for _, field := range fields {
		var value any
		if raw || field.PreSave == nil {
			value = row[field.Name]
		} else {
			value = field.PreSave(row, true)
		}

		value, err := field.StoreValue(value)
		if err != nil {
			return nil, fmt.Errorf("preparing %s: %w", field.Name, err)
		}

		if value == nil && !field.Nullable && !field.PrimaryKey {
			return nil, fmt.Errorf("%w: cannot set %s (a non-nullable field) to nil",
				types.ErrIntegrity, field.Name)
		}
		entity.Set(field.Column, value)
	}

	// A caller-supplied string primary key becomes the entity's key name;
	// integer keys are assigned by the store on put.
	if pk := model.PK(); pk != nil {
		if name, ok := entity.Get(pk.Column).(string); ok && name != "" {
			entity.Key = types.Key{Kind: model.Kind, Name: name}
		}
	}
	return entity, nil
}

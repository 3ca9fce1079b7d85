package types

// Statement is an ORM-level statement the cursor accepts directly, bypassing
// SQL entirely: either a *SelectQuery or an *InsertStatement.
type Statement interface {
	isStatement()
}

// SelectQuery is an ORM read: a WHERE tree and the output columns the
// caller wants, in order. An empty Columns list means every declared field.
type SelectQuery struct {
	Where   *Node
	Columns []string
}

func (*SelectQuery) isStatement() {}

// InsertStatement is an ORM write: the fields to persist and one row of
// attribute values per instance. Raw skips the pre-save hooks and stores
// the attribute values as given.
type InsertStatement struct {
	Fields []*Field
	Rows   []Row
	Raw    bool
}

func (*InsertStatement) isStatement() {}

// Connection is the narrow driver surface the ORM host consumes. The
// datastore has no connection state to manage, so the transactional entry
// points succeed without doing anything.
type Connection interface {
	Rollback() error
	Commit() error
	Close() error

	NewCursor() Cursor

	// GetTableList returns the kinds known to the datastore.
	GetTableList() ([]string, error)
}

// Cursor drives one query at a time and pages through its results.
type Cursor interface {
	// Execute always fails: this layer never processes SQL strings.
	Execute(sql string, params ...any) error

	// ExecuteQuery accepts an ORM statement directly.
	ExecuteQuery(model *Model, stmt Statement) error

	// FetchMany returns up to size rows as positional tuples in the
	// caller-requested column order.
	FetchMany(size int) ([][]any, error)

	// LastRowID returns the id-or-name of the most recently persisted key.
	LastRowID() (any, error)
}

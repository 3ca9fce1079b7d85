package types

import "fmt"

// KeyColumn is the reserved column name the datastore uses to address an
// entity's primary key. It must not appear as a declared field column.
const KeyColumn = "__key__"

// StorageType names the datastore-level representation of a field value.
type StorageType string

// Storage types understood by the translation layer. Text and Bytes are
// unindexed and therefore never appear in a projection.
const (
	StorageKey      StorageType = "key"
	StorageString   StorageType = "string"
	StorageText     StorageType = "text"
	StorageBytes    StorageType = "bytes"
	StorageInteger  StorageType = "integer"
	StorageFloat    StorageType = "float"
	StorageBool     StorageType = "bool"
	StorageDateTime StorageType = "datetime"
	StorageList     StorageType = "list"
)

// Row carries one ORM instance's attribute values keyed by field name.
type Row map[string]any

// Field describes one model field: its ORM name, datastore column, storage
// representation, constraints, and the hooks converting between the ORM's
// and the datastore's value spaces.
type Field struct {
	Name       string      // Attribute name in the ORM.
	Column     string      // Property name in the datastore.
	Storage    StorageType // Datastore-level representation.
	Nullable   bool        // Whether nil is a legal stored value.
	PrimaryKey bool        // Whether this field is the model's key.
	Unique     bool        // Single-field unique constraint.
	Relation   *Model      // Target model for foreign keys; nil otherwise.

	// PrepForStore converts an ORM value to its storage representation on
	// insert. Nil means the value is stored as-is.
	PrepForStore func(v any) (any, error)

	// PreSave produces the value to persist when the insert is not raw
	// (auto-now timestamps and the like). Nil means the row value is used.
	PreSave func(row Row, adding bool) any
}

// StoreValue applies the field's storage-prep hook, if any.
func (f *Field) StoreValue(v any) (any, error) {
	if f.PrepForStore == nil {
		return v, nil
	}
	return f.PrepForStore(v)
}

// Model describes an entity class: its kind, ordered fields, and unique
// constraint declarations.
type Model struct {
	AppLabel string   // Application namespace, the first fingerprint segment.
	Kind     string   // Datastore kind (table name).
	Fields   []*Field // Ordered field list; exactly one has PrimaryKey set.

	// UniqueTogether lists composite unique constraints by field name.
	UniqueTogether [][]string
}

// Validate checks that the model is well-formed: no field claims the
// reserved key column, a primary key exists, and every UniqueTogether
// member names a declared field.
func (m *Model) Validate() error {
	var pk *Field
	for _, f := range m.Fields {
		if f.Column == KeyColumn {
			return fmt.Errorf("%w: field %s", ErrReservedColumn, f.Name)
		}
		if f.PrimaryKey {
			pk = f
		}
	}
	if pk == nil {
		return ErrNoPrimaryKey
	}
	for _, combo := range m.UniqueTogether {
		for _, name := range combo {
			if m.FieldByName(name) == nil {
				return fmt.Errorf("%w: %s in unique_together", ErrUnknownField, name)
			}
		}
	}
	return nil
}

// PK returns the model's primary key field, or nil if none is declared.
func (m *Model) PK() *Field {
	for _, f := range m.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return nil
}

// FieldByName returns the field with the given ORM name, or nil.
func (m *Model) FieldByName(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldByColumn returns the field with the given datastore column, or nil.
func (m *Model) FieldByColumn(column string) *Field {
	for _, f := range m.Fields {
		if f.Column == column {
			return f
		}
	}
	return nil
}

// Columns returns the declared field columns in declaration order.
func (m *Model) Columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Column
	}
	return cols
}

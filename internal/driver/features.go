package driver

import "github.com/mesh-intelligence/kindling/pkg/types"

// Features advertises driver capabilities to the ORM host.
type Features struct {
	EmptyFetchManyValue  [][]any
	SupportsTransactions bool
}

// DefaultFeatures returns the capability flags this driver advertises:
// empty fetches yield an empty slice, and transactions are off even though
// the datastore itself has them.
func DefaultFeatures() Features {
	return Features{
		EmptyFetchManyValue:  [][]any{},
		SupportsTransactions: false,
	}
}

// Operators maps the directly-translatable lookups to the operator
// templates the ORM host's compiler interpolates. Everything else is
// compiled inside the lowerer.
var Operators = map[types.Lookup]string{
	types.LookupExact: "= %s",
	types.LookupGT:    "> %s",
	types.LookupGTE:   ">= %s",
	types.LookupLT:    "< %s",
	types.LookupLTE:   "<= %s",
}

// QuoteName returns the name unchanged: the datastore has nothing to quote.
func QuoteName(name string) string {
	return name
}

// SchemaEditor is the schemaless store's answer to DDL: every operation
// succeeds by doing nothing.
type SchemaEditor struct{}

// CreateModel does nothing; kinds exist implicitly once written to.
func (SchemaEditor) CreateModel(*types.Model) error { return nil }

// DeleteModel does nothing.
func (SchemaEditor) DeleteModel(*types.Model) error { return nil }

// AlterField does nothing.
func (SchemaEditor) AlterField(m *types.Model, from, to *types.Field) error { return nil }

// ColumnSQL returns an empty definition for every field.
func (SchemaEditor) ColumnSQL(*types.Model, *types.Field) string { return "" }

package types

import (
	"errors"
	"fmt"
)

// Driver error kinds. Shape-specific errors below wrap one of these so
// callers can classify with errors.Is.
var (
	ErrDatabase     = errors.New("database error")
	ErrIntegrity    = errors.New("integrity error")
	ErrNotSupported = errors.New("not supported")
)

// Query-shape errors raised by the WHERE-tree lowerer and the cursor.
var (
	ErrOnlyAndSupported  = fmt.Errorf("%w: only AND filters are supported", ErrDatabase)
	ErrJoinsNotSupported = fmt.Errorf("%w: joins and multi-table inheritance are not supported", ErrDatabase)
	ErrUnsupportedLookup = fmt.Errorf("%w: lookup type is not supported", ErrDatabase)
	ErrNegatedLookup     = fmt.Errorf("%w: negated lookups are not supported", ErrDatabase)
	ErrListArgument      = fmt.Errorf("%w: list argument requires an IN lookup", ErrDatabase)
	ErrEmptyInLookup     = fmt.Errorf("%w: IN lookup requires a non-empty list", ErrDatabase)
	ErrSQLNotSupported   = fmt.Errorf("%w: cannot execute traditional SQL", ErrDatabase)
	ErrNoQuery           = fmt.Errorf("%w: cursor has no pending query", ErrDatabase)
	ErrNoRowsInserted    = fmt.Errorf("%w: no rows have been inserted", ErrDatabase)
)

// ErrTransactions is returned from every transactional entry point.
var ErrTransactions = fmt.Errorf("%w: transactions", ErrNotSupported)

// Model validation errors.
var (
	ErrReservedColumn = errors.New("__key__ is a reserved column name")
	ErrNoPrimaryKey   = errors.New("model has no primary key field")
	ErrUnknownField   = errors.New("unknown field")
)

// Datastore lifecycle and query errors.
var (
	ErrStoreDetached   = errors.New("datastore is detached")
	ErrAlreadyAttached = errors.New("datastore is already attached")
	ErrUnknownCursor   = errors.New("unknown continuation token")
)

// Config validation errors.
var (
	ErrAppLabelEmpty   = errors.New("app label must not be empty")
	ErrCacheTTLInvalid = errors.New("cache TTL must not be negative")
)

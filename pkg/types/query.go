package types

// Native filter operators. Lookups without a direct operator (isnull, in,
// startswith, range, year) lower to combinations of these.
const (
	OpEqual = "="
	OpGT    = ">"
	OpGTE   = ">="
	OpLT    = "<"
	OpLTE   = "<="
)

// Filter is one native datastore predicate: column, operator, operand.
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Query is one native datastore query: a kind, a conjunction of filters,
// and an optional projection. A query never spans kinds.
type Query struct {
	Kind       string
	Filters    []Filter
	Projection []string
}

// NewQuery returns an empty query against the given kind.
func NewQuery(kind string, projection []string) *Query {
	return &Query{Kind: kind, Projection: projection}
}

// AddFilter appends a native predicate to the query.
func (q *Query) AddFilter(column, op string, value any) {
	q.Filters = append(q.Filters, Filter{Column: column, Op: op, Value: value})
}

// Clone returns a deep copy of the query. IN expansion clones the pending
// query once per operand before fanning filters out.
func (q *Query) Clone() *Query {
	c := &Query{Kind: q.Kind}
	if q.Filters != nil {
		c.Filters = make([]Filter, len(q.Filters))
		copy(c.Filters, q.Filters)
	}
	if q.Projection != nil {
		c.Projection = make([]string, len(q.Projection))
		copy(c.Projection, q.Projection)
	}
	return c
}

// ClearProjection removes the projection, turning the query into a full
// entity fetch.
func (q *Query) ClearProjection() {
	q.Projection = nil
}

package driver

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// operatorFor maps directly-translatable lookups to native operators. The
// remaining supported lookups (isnull, in, startswith, range, year) lower
// through specialized paths in applyLeaf.
var operatorFor = map[types.Lookup]string{
	types.LookupExact: types.OpEqual,
	types.LookupGT:    types.OpGT,
	types.LookupGTE:   types.OpGTE,
	types.LookupLT:    types.OpLT,
	types.LookupLTE:   types.OpLTE,
}

// prefixUpperBound terminates the half-open range a startswith lookup
// lowers to: [prefix, prefix+"�").
const prefixUpperBound = "�"

// wildcard is the LIKE sentinel the ORM pads pattern operands with; the
// lowerer strips it back off.
const wildcard = "%"

// lowerer walks one WHERE tree and accumulates the pending native queries.
// IN expansion replaces the pending set with its cartesian fan-out, so
// every filter applied afterwards lands on every fan-out child.
type lowerer struct {
	model   *types.Model
	queries []*types.Query

	// flat records every emitted (column, op, value) triple outside IN
	// fan-outs; the cursor derives cache fingerprints from its equality
	// entries.
	flat []types.Filter
}

// newLowerer seeds the pending set with one empty query against the
// model's kind. A requested projection containing a text or bytes column
// cannot be served by the datastore and is dropped up front.
func newLowerer(model *types.Model, projection []string) *lowerer {
	for _, col := range projection {
		if f := model.FieldByColumn(col); f != nil {
			if f.Storage == types.StorageText || f.Storage == types.StorageBytes {
				projection = nil
				break
			}
		}
	}
	var proj []string
	if len(projection) > 0 {
		proj = make([]string, len(projection))
		copy(proj, projection)
	}
	return &lowerer{
		model:   model,
		queries: []*types.Query{types.NewQuery(model.Kind, proj)},
	}
}

// lower traverses the tree and returns the emitted native queries together
// with the flat filter record. A nil tree yields the single unfiltered
// kind query.
func (l *lowerer) lower(where *types.Node) ([]*types.Query, []types.Filter, error) {
	if where != nil {
		if err := l.walk(where, false); err != nil {
			return nil, nil, err
		}
	}
	return l.queries, l.flat, nil
}

// walk descends depth-first, toggling the negation flag on negated nodes.
// A non-negated OR has no conjunctive native form and fails; a negated OR
// is a conjunction by De Morgan and descends, with its children rejected
// individually if their negated lookups cannot be expressed.
func (l *lowerer) walk(node *types.Node, negated bool) error {
	if node.Negated {
		negated = !negated
	}
	if !negated && node.Connector != types.ConnectorAnd {
		return types.ErrOnlyAndSupported
	}

	for _, child := range node.Children {
		switch c := child.(type) {
		case *types.Node:
			if err := l.walk(c, negated); err != nil {
				return err
			}
		case types.Leaf:
			if err := l.applyLeaf(c, negated); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected tree child %T", types.ErrDatabase, child)
		}
	}
	return nil
}

// applyLeaf lowers one ORM constraint onto every pending query.
func (l *lowerer) applyLeaf(leaf types.Leaf, negated bool) error {
	if negated {
		return fmt.Errorf("%w: %s", types.ErrNegatedLookup, leaf.Lookup)
	}
	if leaf.Alias != "" && leaf.Alias != l.model.Kind {
		return types.ErrJoinsNotSupported
	}

	field, err := l.resolveField(leaf)
	if err != nil {
		return err
	}

	value, err := normalizeValue(leaf.Lookup, leaf.Value, leaf.Annotation)
	if err != nil {
		return err
	}

	if !types.SupportedLookups[leaf.Lookup] {
		return fmt.Errorf("%w: %s", types.ErrUnsupportedLookup, leaf.Lookup)
	}

	column := field.Column
	if field.PrimaryKey {
		column = types.KeyColumn
	}

	l.guardProjection(field, leaf.Lookup)

	switch leaf.Lookup {
	case types.LookupIn:
		return l.expandIn(column, value)
	case types.LookupIsNull:
		return l.lowerIsNull(column, value)
	case types.LookupStartsWith:
		return l.lowerStartsWith(column, value)
	case types.LookupRange:
		return l.lowerRange(column, value)
	case types.LookupYear:
		return l.lowerYear(column, value)
	default:
		l.emit(column, operatorFor[leaf.Lookup], value)
		return nil
	}
}

// resolveField returns the field the filter should consider. When the
// constraint holds the parent's primary key but the ORM resolved the
// condition to a child column ending in _id (a parent.child_set lookup),
// the filter targets the child's foreign-key field instead.
func (l *lowerer) resolveField(leaf types.Leaf) (*types.Field, error) {
	field := leaf.Field
	if field == nil {
		return nil, fmt.Errorf("%w: constraint on %s has no field", types.ErrDatabase, leaf.Column)
	}
	if leaf.Column == "" || leaf.Column == field.Column {
		return field, nil
	}
	if !field.PrimaryKey || !strings.HasSuffix(leaf.Column, "_id") {
		return nil, fmt.Errorf("%w: constraint column %s does not match field %s",
			types.ErrDatabase, leaf.Column, field.Name)
	}
	fk := l.model.FieldByName(strings.TrimSuffix(leaf.Column, "_id"))
	if fk == nil || fk.Relation == nil {
		return nil, fmt.Errorf("%w: no foreign key behind column %s", types.ErrDatabase, leaf.Column)
	}
	return fk, nil
}

// guardProjection clears the projection from every pending query when the
// filtered column is projected and the lookup or storage type forbids
// projecting it.
func (l *lowerer) guardProjection(field *types.Field, lookup types.Lookup) {
	projected := false
	for _, q := range l.queries {
		for _, col := range q.Projection {
			if col == field.Column {
				projected = true
			}
		}
	}
	if !projected {
		return
	}

	disable := field.Storage == types.StorageText || field.Storage == types.StorageBytes
	if lookup == types.LookupExact || lookup == types.LookupIn {
		disable = true
	}
	if !disable {
		return
	}
	for _, q := range l.queries {
		q.ClearProjection()
	}
}

// emit adds the filter to every pending query and records it in the flat
// list.
func (l *lowerer) emit(column, op string, value any) {
	for _, q := range l.queries {
		q.AddFilter(column, op, value)
	}
	l.flat = append(l.flat, types.Filter{Column: column, Op: op, Value: value})
}

// expandIn replaces the pending set with its cartesian product over the
// operand list: every pending query is cloned once per operand, with the
// equality filter added to the clone. Fan-out filters stay out of the flat
// record; the cache fast path only serves single-query cursors.
func (l *lowerer) expandIn(column string, value any) error {
	values, ok := asList(value)
	if !ok {
		return fmt.Errorf("%w: IN operand is %T", types.ErrDatabase, value)
	}
	if len(values) == 0 {
		return types.ErrEmptyInLookup
	}

	expanded := make([]*types.Query, 0, len(l.queries)*len(values))
	for _, q := range l.queries {
		for _, v := range values {
			clone := q.Clone()
			clone.AddFilter(column, types.OpEqual, v)
			expanded = append(expanded, clone)
		}
	}
	l.queries = expanded
	return nil
}

// lowerIsNull emits an equality against nil. The datastore has no
// is-not-null predicate, so a false annotation fails.
func (l *lowerer) lowerIsNull(column string, value any) error {
	isNull, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: isnull annotation is %T", types.ErrDatabase, value)
	}
	if !isNull {
		return fmt.Errorf("%w: isnull=false", types.ErrUnsupportedLookup)
	}
	l.emit(column, types.OpEqual, nil)
	return nil
}

// lowerStartsWith emits the half-open range [prefix, prefix+"�").
func (l *lowerer) lowerStartsWith(column string, value any) error {
	prefix, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: startswith operand is %T", types.ErrDatabase, value)
	}
	l.emit(column, types.OpGTE, prefix)
	l.emit(column, types.OpLT, prefix+prefixUpperBound)
	return nil
}

// lowerRange emits the closed range [lo, hi] as a pair of inequalities.
func (l *lowerer) lowerRange(column string, value any) error {
	bounds, ok := asList(value)
	if !ok || len(bounds) != 2 {
		return fmt.Errorf("%w: range requires a (lo, hi) pair", types.ErrDatabase)
	}
	l.emit(column, types.OpGTE, bounds[0])
	l.emit(column, types.OpLTE, bounds[1])
	return nil
}

// lowerYear emits the half-open datetime range [Jan 1 Y, Jan 1 Y+1). The
// operand is the year number, possibly still wrapped in a one-element list
// by the ORM's operand preparation.
func (l *lowerer) lowerYear(column string, value any) error {
	if list, ok := asList(value); ok {
		if len(list) != 1 {
			return fmt.Errorf("%w: year requires a single year number", types.ErrDatabase)
		}
		value = list[0]
	}
	year, ok := asInt(value)
	if !ok {
		return fmt.Errorf("%w: year operand is %T", types.ErrDatabase, value)
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	l.emit(column, types.OpGTE, start)
	l.emit(column, types.OpLT, start.AddDate(1, 0, 0))
	return nil
}

// normalizeValue undoes the ORM's operand preparation: most values arrive
// wrapped in a one-element list (longer lists are only legal for IN), the
// isnull flag survives only in the annotation, and pattern lookups carry
// LIKE wildcards that native ranges do not want.
func normalizeValue(lookup types.Lookup, value, annotation any) (any, error) {
	if lookup == types.LookupIsNull {
		return annotation, nil
	}

	switch lookup {
	case types.LookupIn, types.LookupRange, types.LookupYear:
		// Sequences stay sequences.
	default:
		if list, ok := asList(value); ok {
			if len(list) > 1 {
				return nil, fmt.Errorf("%w: lookup was %s", types.ErrListArgument, lookup)
			}
			if len(list) == 1 {
				value = list[0]
			}
		}
	}

	if s, ok := value.(string); ok {
		switch lookup {
		case types.LookupStartsWith, types.LookupIStartsWith:
			value = strings.TrimSuffix(s, wildcard)
		case types.LookupEndsWith, types.LookupIEndsWith:
			value = strings.TrimPrefix(s, wildcard)
		case types.LookupContains, types.LookupIContains:
			value = strings.TrimSuffix(strings.TrimPrefix(s, wildcard), wildcard)
		}
	}
	return value, nil
}

// asList flattens any slice operand (except raw bytes) to []any.
func asList(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if list, ok := v.([]any); ok {
		return list, true
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	list := make([]any, rv.Len())
	for i := range list {
		list[i] = rv.Index(i).Interface()
	}
	return list, true
}

// asInt narrows numeric operands to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

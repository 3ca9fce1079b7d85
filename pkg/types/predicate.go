package types

// Connector joins the children of a predicate-tree node.
type Connector string

// Tree connectors. The lowerer accepts AND everywhere and OR only under a
// negation (where it has no conjunction-free native form either, so it is
// rejected at the leaves instead).
const (
	ConnectorAnd Connector = "AND"
	ConnectorOr  Connector = "OR"
)

// Lookup names the comparison an ORM filter applies to a column.
type Lookup string

// Lookups the ORM can hand to the lowerer. Only the ones listed in
// SupportedLookups lower to native filters; the rest fail.
const (
	LookupExact       Lookup = "exact"
	LookupGT          Lookup = "gt"
	LookupGTE         Lookup = "gte"
	LookupLT          Lookup = "lt"
	LookupLTE         Lookup = "lte"
	LookupIsNull      Lookup = "isnull"
	LookupIn          Lookup = "in"
	LookupStartsWith  Lookup = "startswith"
	LookupIStartsWith Lookup = "istartswith"
	LookupEndsWith    Lookup = "endswith"
	LookupIEndsWith   Lookup = "iendswith"
	LookupContains    Lookup = "contains"
	LookupIContains   Lookup = "icontains"
	LookupRange       Lookup = "range"
	LookupYear        Lookup = "year"
)

// SupportedLookups is the set of lookups the lowerer can express natively.
var SupportedLookups = map[Lookup]bool{
	LookupExact:      true,
	LookupGT:         true,
	LookupGTE:        true,
	LookupLT:         true,
	LookupLTE:        true,
	LookupIsNull:     true,
	LookupIn:         true,
	LookupStartsWith: true,
	LookupRange:      true,
	LookupYear:       true,
}

// Condition is one node of a WHERE tree: either a *Node or a Leaf.
type Condition interface {
	isCondition()
}

// Node is an internal predicate-tree node: a connector over children,
// optionally negated.
type Node struct {
	Connector Connector
	Negated   bool
	Children  []Condition
}

func (*Node) isCondition() {}

// Leaf is a single ORM constraint: the resolved column, the field metadata
// the constraint carries, the lookup, and its operand.
//
// Alias names the kind the constraint was resolved against; a non-empty
// alias differing from the query's root kind is a join attempt. Annotation
// carries the boolean argument of an isnull lookup, which the ORM loses
// from the value during operand preparation.
type Leaf struct {
	Alias      string
	Column     string
	Field      *Field
	Lookup     Lookup
	Annotation any
	Value      any
}

func (Leaf) isCondition() {}

// And returns an AND node over the given children.
func And(children ...Condition) *Node {
	return &Node{Connector: ConnectorAnd, Children: children}
}

// Or returns an OR node over the given children.
func Or(children ...Condition) *Node {
	return &Node{Connector: ConnectorOr, Children: children}
}

// Not returns a negated AND node over the given children.
func Not(children ...Condition) *Node {
	return &Node{Connector: ConnectorAnd, Negated: true, Children: children}
}

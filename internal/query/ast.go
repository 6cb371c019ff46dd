package query

// NodeKind discriminates the AST variants.
type NodeKind int

const (
	NodeWord NodeKind = iota
	NodeRegex
	NodeField
	NodeCompare
	NodeRange
	NodeFunction
	NodeModified
	NodeAnd
	NodeOr
	NodeNot
	NodeGroup
)

// CompareOp is the operator of a Compare node.
type CompareOp int

const (
	CompareEq CompareOp = iota
	CompareContains
	CompareSmaller
	CompareSmallerEq
	CompareGreater
	CompareGreaterEq
)

// BoundKind discriminates range bounds.
type BoundKind int

const (
	BoundUnbounded BoundKind = iota
	BoundInclusive
	BoundExclusive
)

// Bound is one end of a Range node. Value is unused for BoundUnbounded.
type Bound struct {
	Kind  BoundKind
	Value string
}

// Node is a query AST node. Nodes are immutable after construction: the
// parser builds the tree bottom-up and nothing mutates it afterwards, so a
// compiled query can share the tree freely across search workers.
//
// Field usage by kind:
//
//	NodeWord      Text (literal word)
//	NodeRegex     Text (raw pattern, without the surrounding slashes)
//	NodeField     Field (field name), Text (term)
//	NodeCompare   Field, Op, Text (comparison literal)
//	NodeRange     Field, Low, High
//	NodeFunction  Field (function name), Args
//	NodeModified  Left (inner), Mods
//	NodeAnd/Or    Left, Right
//	NodeNot/Group Left (inner)
type Node struct {
	Kind  NodeKind
	Text  string
	Field string
	Op    CompareOp
	Low   Bound
	High  Bound
	Args  []string
	Mods  []string
	Left  *Node
	Right *Node
}

// Word returns a literal word node.
func Word(text string) *Node { return &Node{Kind: NodeWord, Text: text} }

// Regex returns a raw regular-expression node.
func Regex(pattern string) *Node { return &Node{Kind: NodeRegex, Text: pattern} }

// FieldTerm returns a field-scoped term node.
func FieldTerm(field, term string) *Node {
	return &Node{Kind: NodeField, Field: field, Text: term}
}

// Compare returns a field comparison node.
func Compare(field string, op CompareOp, value string) *Node {
	return &Node{Kind: NodeCompare, Field: field, Op: op, Text: value}
}

// Range returns a field range node.
func Range(field string, low, high Bound) *Node {
	return &Node{Kind: NodeRange, Field: field, Low: low, High: high}
}

// Function returns a function-call node.
func Function(name string, args ...string) *Node {
	return &Node{Kind: NodeFunction, Field: name, Args: args}
}

// Modified wraps inner with term modifiers such as "icase" or "exact".
func Modified(inner *Node, mods ...string) *Node {
	return &Node{Kind: NodeModified, Left: inner, Mods: mods}
}

// And returns the conjunction of l and r.
func And(l, r *Node) *Node { return &Node{Kind: NodeAnd, Left: l, Right: r} }

// Or returns the disjunction of l and r.
func Or(l, r *Node) *Node { return &Node{Kind: NodeOr, Left: l, Right: r} }

// Not returns the negation of inner.
func Not(inner *Node) *Node { return &Node{Kind: NodeNot, Left: inner} }

// Group returns a parenthesized subexpression. Groups are transparent to
// evaluation; they exist so the tree mirrors the query text.
func Group(inner *Node) *Node { return &Node{Kind: NodeGroup, Left: inner} }

// Package matcher lowers query ASTs into evaluatable matcher trees whose
// leaves hold pooled compiled patterns, and evaluates them against the
// combined "name\npath" text the search pipeline produces per entry.
package matcher

import (
	"fmt"
	"strings"

	fsqerrors "github.com/standardbeagle/fsq/internal/errors"
	"github.com/standardbeagle/fsq/internal/pattern"
	"github.com/standardbeagle/fsq/internal/query"
)

// CompiledKind discriminates compiled node variants. The compiled tree
// mirrors the AST shape, but leaves carry resolved, ready-to-evaluate state.
type CompiledKind int

const (
	CompiledLeaf CompiledKind = iota
	CompiledCompare
	CompiledRange
	CompiledFunction
	CompiledAnd
	CompiledOr
	CompiledNot
)

// Compiled is one node of a compiled query. Immutable after compilation;
// the pattern handles it references are shared with the pool and stay valid
// for the compiled query's lifetime.
type Compiled struct {
	Kind CompiledKind

	// Leaf state
	Pat     *pattern.Handle
	Negated bool
	Field   string // scoping field name; empty = unscoped
	Mods    []string

	// Compare / Range state
	Op    query.CompareOp
	Value string
	Low   query.Bound
	High  query.Bound

	// Function state
	FuncName string
	Args     []string

	// Children
	Left  *Compiled
	Right *Compiled
}

// Matcher compiles ASTs against a shared pattern pool and evaluates the
// resulting trees. It is safe for concurrent use.
type Matcher struct {
	pool *pattern.Pool
}

// NewMatcher creates a matcher backed by pool.
func NewMatcher(pool *pattern.Pool) *Matcher {
	return &Matcher{pool: pool}
}

// Pool returns the pattern pool backing this matcher.
func (m *Matcher) Pool() *pattern.Pool {
	return m.pool
}

// Compile lowers node into a compiled matcher tree. Every AST variant is
// handled exhaustively; an unknown kind is a compile error so the caller
// can fall back to literal matching instead of silently matching on
// stringified internals.
func (m *Matcher) Compile(node *query.Node) (*Compiled, error) {
	if node == nil {
		return nil, fsqerrors.NewCompileError("nil")
	}
	switch node.Kind {
	case query.NodeWord:
		return m.compileLeaf(buildLiteralPattern(node.Text, nil), false, "", nil)

	case query.NodeRegex:
		return m.compileLeaf(buildRegexPattern(node.Text, nil), false, "", nil)

	case query.NodeField:
		return m.compileFieldLeaf(node.Field, node.Text, false, nil)

	case query.NodeCompare:
		return &Compiled{
			Kind:  CompiledCompare,
			Field: node.Field,
			Op:    node.Op,
			Value: node.Text,
		}, nil

	case query.NodeRange:
		return &Compiled{
			Kind:  CompiledRange,
			Field: node.Field,
			Low:   node.Low,
			High:  node.High,
		}, nil

	case query.NodeFunction:
		return &Compiled{
			Kind:     CompiledFunction,
			FuncName: node.Field,
			Args:     node.Args,
		}, nil

	case query.NodeModified:
		return m.compileModified(node)

	case query.NodeAnd, query.NodeOr:
		left, err := m.Compile(node.Left)
		if err != nil {
			return nil, err
		}
		right, err := m.Compile(node.Right)
		if err != nil {
			return nil, err
		}
		kind := CompiledAnd
		if node.Kind == query.NodeOr {
			kind = CompiledOr
		}
		return &Compiled{Kind: kind, Left: left, Right: right}, nil

	case query.NodeNot:
		inner, err := m.Compile(node.Left)
		if err != nil {
			return nil, err
		}
		return &Compiled{Kind: CompiledNot, Left: inner}, nil

	case query.NodeGroup:
		// Groups are transparent: compile straight through.
		return m.Compile(node.Left)

	default:
		return nil, fsqerrors.NewCompileError(fmt.Sprintf("%d", node.Kind))
	}
}

// compileModified folds term modifiers into the pattern build of the inner
// leaf. Only leaf-shaped inners are modifiable; modifiers on boolean
// structure have no defined meaning and are a compile error.
func (m *Matcher) compileModified(node *query.Node) (*Compiled, error) {
	mods := node.Mods
	negated := modsNegate(mods)
	inner := node.Left
	if inner == nil {
		return nil, fsqerrors.NewCompileError("modified(nil)")
	}
	switch inner.Kind {
	case query.NodeWord:
		return m.compileLeaf(buildLiteralPattern(inner.Text, mods), negated, "", mods)
	case query.NodeRegex:
		return m.compileLeaf(buildRegexPattern(inner.Text, mods), negated, "", mods)
	case query.NodeField:
		return m.compileFieldLeaf(inner.Field, inner.Text, negated, mods)
	default:
		return nil, fsqerrors.NewCompileError(fmt.Sprintf("modified(%d)", inner.Kind))
	}
}

func (m *Matcher) compileLeaf(patternText string, negated bool, field string, mods []string) (*Compiled, error) {
	h, err := m.pool.Acquire(patternText)
	if err != nil {
		return nil, err
	}
	return &Compiled{
		Kind:    CompiledLeaf,
		Pat:     h,
		Negated: negated,
		Field:   field,
		Mods:    mods,
	}, nil
}

// compileFieldLeaf treats a /…/-wrapped term as a regex and anything else
// as an escaped literal, scoped to the named field.
func (m *Matcher) compileFieldLeaf(field, term string, negated bool, mods []string) (*Compiled, error) {
	var patternText string
	if len(term) >= 2 && strings.HasPrefix(term, "/") && strings.HasSuffix(term, "/") {
		patternText = buildRegexPattern(term[1:len(term)-1], mods)
	} else {
		patternText = buildLiteralPattern(term, mods)
	}
	return m.compileLeaf(patternText, negated, field, mods)
}

// Release returns every pattern handle held by the compiled tree to the
// pool. The tree must not be evaluated afterwards.
func (m *Matcher) Release(c *Compiled) {
	if c == nil {
		return
	}
	if c.Pat != nil {
		m.pool.Release(c.Pat)
	}
	m.Release(c.Left)
	m.Release(c.Right)
}

// escapeLiteral escapes regexp metacharacters and wraps the literal in a
// capturing group so capture ranges are always available for highlighting.
func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s)*2 + 2)
	b.WriteByte('(')
	for _, ch := range s {
		switch ch {
		case '\\', '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|':
			b.WriteByte('\\')
		}
		b.WriteRune(ch)
	}
	b.WriteByte(')')
	return b.String()
}

func modsIgnoreCase(mods []string) bool {
	for _, m := range mods {
		if strings.EqualFold(m, "i") || strings.EqualFold(m, "icase") || strings.EqualFold(m, "ignorecase") {
			return true
		}
	}
	return false
}

func modsAnchor(mods []string) bool {
	for _, m := range mods {
		if strings.HasPrefix(m, "anch") || strings.EqualFold(m, "exact") {
			return true
		}
	}
	return false
}

func modsNegate(mods []string) bool {
	for _, m := range mods {
		if strings.EqualFold(m, "not") || strings.EqualFold(m, "invert") || strings.EqualFold(m, "neg") {
			return true
		}
	}
	return false
}

func buildLiteralPattern(s string, mods []string) string {
	pat := escapeLiteral(s)
	if modsIgnoreCase(mods) {
		pat = "(?i)" + pat
	}
	if modsAnchor(mods) {
		pat = "^" + pat + "$"
	}
	return pat
}

func buildRegexPattern(s string, mods []string) string {
	pat := s
	if modsIgnoreCase(mods) {
		pat = "(?i)" + pat
	}
	if modsAnchor(mods) {
		pat = "^" + pat + "$"
	}
	return pat
}

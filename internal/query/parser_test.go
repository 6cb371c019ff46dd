package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) *Node {
	t.Helper()
	node, ok := NewParser(input).Parse()
	require.True(t, ok, "expected %q to parse", input)
	require.NotNil(t, node)
	return node
}

func TestParseBasicExpression(t *testing.T) {
	ast := mustParse(t, "name:foo AND (bar OR baz)")

	require.Equal(t, NodeAnd, ast.Kind)
	require.Equal(t, NodeField, ast.Left.Kind)
	assert.Equal(t, "name", ast.Left.Field)
	assert.Equal(t, "foo", ast.Left.Text)

	require.Equal(t, NodeGroup, ast.Right.Kind)
	or := ast.Right.Left
	require.Equal(t, NodeOr, or.Kind)
	assert.Equal(t, "bar", or.Left.Text)
	assert.Equal(t, "baz", or.Right.Text)
}

func TestParsePrecedence(t *testing.T) {
	// a OR b AND c parses as a OR (b AND c).
	ast := mustParse(t, "a OR b AND c")
	require.Equal(t, NodeOr, ast.Kind)
	assert.Equal(t, "a", ast.Left.Text)
	require.Equal(t, NodeAnd, ast.Right.Kind)
	assert.Equal(t, "b", ast.Right.Left.Text)
	assert.Equal(t, "c", ast.Right.Right.Text)

	// NOT binds tighter than AND.
	ast = mustParse(t, "NOT a AND b")
	require.Equal(t, NodeAnd, ast.Kind)
	require.Equal(t, NodeNot, ast.Left.Kind)
	assert.Equal(t, "a", ast.Left.Left.Text)
}

func TestParseCompareWithoutColon(t *testing.T) {
	tests := []struct {
		input string
		field string
		op    CompareOp
		value string
	}{
		{"size<1000", "size", CompareSmaller, "1000"},
		{"size<=1000", "size", CompareSmallerEq, "1000"},
		{"mtime>100", "mtime", CompareGreater, "100"},
		{"mtime>=100", "mtime", CompareGreaterEq, "100"},
		{"name=report", "name", CompareEq, "report"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ast := mustParse(t, tt.input)
			require.Equal(t, NodeCompare, ast.Kind)
			assert.Equal(t, tt.field, ast.Field)
			assert.Equal(t, tt.op, ast.Op)
			assert.Equal(t, tt.value, ast.Text)
		})
	}
}

func TestParseRegexLiteral(t *testing.T) {
	ast := mustParse(t, "/ab[0-9]+/")
	require.Equal(t, NodeRegex, ast.Kind)
	assert.Equal(t, "ab[0-9]+", ast.Text)

	// A lone slash is a word, not an empty regex.
	ast = mustParse(t, "/")
	assert.Equal(t, NodeWord, ast.Kind)
}

func TestParseFieldEmpty(t *testing.T) {
	ast := mustParse(t, "ext:")
	require.Equal(t, NodeField, ast.Kind)
	assert.Equal(t, "ext", ast.Field)
	assert.Equal(t, "", ast.Text)
}

func TestParseNotChain(t *testing.T) {
	ast := mustParse(t, "NOT NOT foo")
	require.Equal(t, NodeNot, ast.Kind)
	require.Equal(t, NodeNot, ast.Left.Kind)
	assert.Equal(t, "foo", ast.Left.Left.Text)
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"dangling AND", "foo AND"},
		{"dangling OR", "foo OR"},
		{"dangling NOT", "NOT"},
		{"comparison without value", "size<"},
		{"comparison onto operator", "size< ="},
		{"lone close bracket", ")"},
		{"empty group", "()"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := NewParser(tt.input).Parse()
			assert.False(t, ok)
			assert.Nil(t, node)
		})
	}
}

// An unbalanced open bracket still parses: the missing close bracket is
// tolerated so a query being typed stays usable.
func TestParseUnclosedGroupTolerated(t *testing.T) {
	ast := mustParse(t, "(foo AND bar")
	require.Equal(t, NodeGroup, ast.Kind)
	assert.Equal(t, NodeAnd, ast.Left.Kind)
}

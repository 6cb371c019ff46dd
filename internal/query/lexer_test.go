package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectTokens(t *testing.T, input string, max int) []Token {
	t.Helper()
	lx := NewLexer(input)
	var out []Token
	for i := 0; i < max; i++ {
		tok := lx.NextToken()
		out = append(out, tok)
		if tok.Kind == TokenEos {
			break
		}
	}
	return out
}

func TestLexerBasicTokens(t *testing.T) {
	toks := collectTokens(t, "name:foo AND bar OR (baz)", 16)
	require.Len(t, toks, 9)
	assert.Equal(t, Token{Kind: TokenField, Text: "name"}, toks[0])
	assert.Equal(t, Token{Kind: TokenWord, Text: "foo"}, toks[1])
	assert.Equal(t, TokenAnd, toks[2].Kind)
	assert.Equal(t, Token{Kind: TokenWord, Text: "bar"}, toks[3])
	assert.Equal(t, TokenOr, toks[4].Kind)
	assert.Equal(t, TokenBracketOpen, toks[5].Kind)
	assert.Equal(t, Token{Kind: TokenWord, Text: "baz"}, toks[6])
	assert.Equal(t, TokenBracketClose, toks[7].Kind)
	assert.Equal(t, TokenEos, toks[8].Kind)
}

func TestLexerOperators(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenKind
	}{
		{"comparison chain", "size<1000", []TokenKind{TokenWord, TokenSmaller, TokenWord, TokenEos}},
		{"smaller-eq", "size<=10", []TokenKind{TokenWord, TokenSmallerEq, TokenWord, TokenEos}},
		{"greater", "mtime>5", []TokenKind{TokenWord, TokenGreater, TokenWord, TokenEos}},
		{"greater-eq", "mtime>=5", []TokenKind{TokenWord, TokenGreaterEq, TokenWord, TokenEos}},
		{"equal", "name=foo", []TokenKind{TokenWord, TokenEqual, TokenWord, TokenEos}},
		{"bang not", "!foo", []TokenKind{TokenNot, TokenWord, TokenEos}},
		{"double ampersand", "a && b", []TokenKind{TokenWord, TokenAnd, TokenWord, TokenEos}},
		{"double pipe", "a || b", []TokenKind{TokenWord, TokenOr, TokenWord, TokenEos}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := collectTokens(t, tt.input, 16)
			var kinds []TokenKind
			for _, tok := range toks {
				kinds = append(kinds, tok.Kind)
			}
			assert.Equal(t, tt.want, kinds)
		})
	}
}

// A '<' or '>' not followed by '=' must not swallow the next character.
func TestLexerComparisonLookaheadPushback(t *testing.T) {
	toks := collectTokens(t, "size<abc", 8)
	require.Len(t, toks, 4)
	assert.Equal(t, TokenSmaller, toks[1].Kind)
	assert.Equal(t, Token{Kind: TokenWord, Text: "abc"}, toks[2])
}

func TestLexerQuotedString(t *testing.T) {
	// Quoted content is read verbatim; no escape processing inside, and
	// reserved words lose their meaning when quoted.
	toks := collectTokens(t, `"AND foo:bar"`, 4)
	require.Len(t, toks, 2)
	assert.Equal(t, Token{Kind: TokenWord, Text: "AND foo:bar"}, toks[0])
}

func TestLexerBackslashEscape(t *testing.T) {
	toks := collectTokens(t, `\( rest`, 8)
	require.Len(t, toks, 3)
	assert.Equal(t, Token{Kind: TokenWord, Text: "("}, toks[0])
	assert.Equal(t, Token{Kind: TokenWord, Text: "rest"}, toks[1])

	// Trailing backslash has nothing to escape.
	toks = collectTokens(t, `\`, 4)
	require.Len(t, toks, 1)
	assert.Equal(t, TokenEos, toks[0].Kind)
}

func TestLexerFieldEmpty(t *testing.T) {
	// Field with whitespace after the colon.
	toks := collectTokens(t, "ext: foo", 8)
	assert.Equal(t, Token{Kind: TokenFieldEmpty, Text: "ext"}, toks[0])
	assert.Equal(t, Token{Kind: TokenWord, Text: "foo"}, toks[1])

	// Field with end of input after the colon.
	toks = collectTokens(t, "ext:", 8)
	assert.Equal(t, Token{Kind: TokenFieldEmpty, Text: "ext"}, toks[0])
	assert.Equal(t, TokenEos, toks[1].Kind)
}

func TestLexerReservedWordsCaseSensitive(t *testing.T) {
	toks := collectTokens(t, "and or not", 8)
	require.Len(t, toks, 4)
	for _, tok := range toks[:3] {
		assert.Equal(t, TokenWord, tok.Kind)
	}
}

func TestLexerEosIdempotent(t *testing.T) {
	lx := NewLexer("   ")
	for i := 0; i < 3; i++ {
		assert.Equal(t, TokenEos, lx.NextToken().Kind)
	}
}

func TestLexerPeekDoesNotAdvance(t *testing.T) {
	lx := NewLexer("foo bar")
	peeked := lx.PeekToken()
	assert.Equal(t, Token{Kind: TokenWord, Text: "foo"}, peeked)
	assert.Equal(t, peeked, lx.PeekToken())
	assert.Equal(t, peeked, lx.NextToken())
	assert.Equal(t, Token{Kind: TokenWord, Text: "bar"}, lx.NextToken())
}

func TestLexerUnicodeWord(t *testing.T) {
	toks := collectTokens(t, "héllo…wörld", 4)
	require.Len(t, toks, 2)
	assert.Equal(t, Token{Kind: TokenWord, Text: "héllo…wörld"}, toks[0])
}

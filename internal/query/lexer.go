package query

import (
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEos TokenKind = iota
	TokenEqual
	TokenContains
	TokenSmaller
	TokenSmallerEq
	TokenGreater
	TokenGreaterEq
	TokenNot
	TokenBracketOpen
	TokenBracketClose
	TokenField      // word immediately followed by ':' with a value after it
	TokenFieldEmpty // word immediately followed by ':' with nothing after it
	TokenWord
	TokenAnd
	TokenOr
)

// Token is a single lexical unit. Text carries the payload for
// TokenField, TokenFieldEmpty and TokenWord; it is empty otherwise.
type Token struct {
	Kind TokenKind
	Text string
}

// reservedChars terminate a bare word. '!' is deliberately absent: it is
// only special at the start of a token, mid-word it stays part of the word.
const reservedChars = ":=<>()\"\\"

// Lexer tokenizes a query string. It never fails: anything that is not a
// recognized operator degrades to a word token. The zero position is the
// start of the input; end of input yields TokenEos idempotently.
type Lexer struct {
	input    string
	pos      int
	pushback []rune
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) nextInputChar() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return r, true
}

func (l *Lexer) nextChar() (rune, bool) {
	if n := len(l.pushback); n > 0 {
		r := l.pushback[0]
		l.pushback = l.pushback[1:]
		return r, true
	}
	return l.nextInputChar()
}

func (l *Lexer) giveBackChar(r rune) {
	l.pushback = append([]rune{r}, l.pushback...)
}

// parseQuotedString reads verbatim until the closing quote or end of input.
// No escape processing happens inside quotes.
func (l *Lexer) parseQuotedString() string {
	var out []rune
	for {
		c, ok := l.nextChar()
		if !ok || c == '"' {
			break
		}
		out = append(out, c)
	}
	return string(out)
}

// NextToken consumes and returns the next token.
func (l *Lexer) NextToken() Token {
	for {
		c, ok := l.nextChar()
		if !ok {
			return Token{Kind: TokenEos}
		}
		if unicode.IsSpace(c) {
			continue
		}
		switch c {
		case 0:
			return Token{Kind: TokenEos}
		case '=':
			return Token{Kind: TokenEqual}
		case ':':
			return Token{Kind: TokenContains}
		case '<':
			if nc, ok := l.nextChar(); ok {
				if nc == '=' {
					return Token{Kind: TokenSmallerEq}
				}
				l.giveBackChar(nc)
			}
			return Token{Kind: TokenSmaller}
		case '>':
			if nc, ok := l.nextChar(); ok {
				if nc == '=' {
					return Token{Kind: TokenGreaterEq}
				}
				l.giveBackChar(nc)
			}
			return Token{Kind: TokenGreater}
		case '!':
			return Token{Kind: TokenNot}
		case '(':
			return Token{Kind: TokenBracketOpen}
		case ')':
			return Token{Kind: TokenBracketClose}
		case '"':
			return Token{Kind: TokenWord, Text: l.parseQuotedString()}
		case '\\':
			if nc, ok := l.nextChar(); ok {
				return Token{Kind: TokenWord, Text: string(nc)}
			}
			// trailing backslash: nothing to escape, fall through to Eos
			continue
		default:
			return l.readWord(c)
		}
	}
}

// readWord reads a bare word starting with first, recognizes reserved
// connective words, and applies the field lookahead. The lookahead never
// consumes characters it does not commit to.
func (l *Lexer) readWord(first rune) Token {
	word := []rune{first}
	for {
		nc, ok := l.nextChar()
		if !ok {
			break
		}
		if unicode.IsSpace(nc) || runeInString(nc, reservedChars) {
			l.giveBackChar(nc)
			break
		}
		word = append(word, nc)
	}
	s := string(word)

	// Reserved connectives are matched case-sensitively.
	switch s {
	case "NOT":
		return Token{Kind: TokenNot}
	case "AND", "&&":
		return Token{Kind: TokenAnd}
	case "OR", "||":
		return Token{Kind: TokenOr}
	}

	// A word directly followed by ':' is a field; if the value position is
	// whitespace or end of input it is an empty field.
	if nc, ok := l.nextChar(); ok {
		if nc == ':' {
			if peek, ok := l.nextChar(); ok {
				if unicode.IsSpace(peek) {
					return Token{Kind: TokenFieldEmpty, Text: s}
				}
				l.giveBackChar(peek)
				return Token{Kind: TokenField, Text: s}
			}
			return Token{Kind: TokenFieldEmpty, Text: s}
		}
		l.giveBackChar(nc)
	}
	return Token{Kind: TokenWord, Text: s}
}

// PeekToken returns the next token without advancing the lexer.
func (l *Lexer) PeekToken() Token {
	oldPos := l.pos
	oldPushback := append([]rune(nil), l.pushback...)
	tok := l.NextToken()
	l.pos = oldPos
	l.pushback = oldPushback
	return tok
}

func runeInString(r rune, s string) bool {
	for _, c := range s {
		if c == r {
			return true
		}
	}
	return false
}

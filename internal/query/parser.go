package query

import "strings"

// Parser builds a boolean-expression AST from a token stream using
// operator-precedence recursive descent: NOT binds tighter than AND, which
// binds tighter than OR.
//
// Parse never returns an error value: a malformed query yields ok=false and
// the caller degrades to fallback matching. Strictness is traded for
// availability on purpose.
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser creates a parser over input and primes the first token.
func NewParser(input string) *Parser {
	lx := NewLexer(input)
	return &Parser{lexer: lx, cur: lx.NextToken()}
}

func (p *Parser) advance() {
	p.cur = p.lexer.NextToken()
}

// Parse parses a complete expression. ok is false when the query cannot be
// parsed; the partial state of the parser is then meaningless.
func (p *Parser) Parse() (*Node, bool) {
	return p.parseOr()
}

func (p *Parser) parseOr() (*Node, bool) {
	node, ok := p.parseAnd()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == TokenOr {
		p.advance()
		right, ok := p.parseAnd()
		if !ok {
			return nil, false
		}
		node = Or(node, right)
	}
	return node, true
}

func (p *Parser) parseAnd() (*Node, bool) {
	node, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for p.cur.Kind == TokenAnd {
		p.advance()
		right, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		node = And(node, right)
	}
	return node, true
}

func (p *Parser) parseUnary() (*Node, bool) {
	if p.cur.Kind == TokenNot {
		p.advance()
		inner, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return Not(inner), true
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (*Node, bool) {
	switch p.cur.Kind {
	case TokenBracketOpen:
		p.advance()
		inner, ok := p.parseOr()
		if !ok {
			return nil, false
		}
		if p.cur.Kind == TokenBracketClose {
			p.advance()
		}
		return Group(inner), true

	case TokenField:
		name := p.cur.Text
		p.advance()
		if p.cur.Kind != TokenWord {
			return nil, false
		}
		term := p.cur.Text
		p.advance()
		return FieldTerm(name, term), true

	case TokenFieldEmpty:
		name := p.cur.Text
		p.advance()
		return FieldTerm(name, ""), true

	case TokenWord:
		return p.parseWordOrCompare()

	default:
		return nil, false
	}
}

// parseWordOrCompare handles a bare word, reinterpreting it as the left-hand
// field of a comparison when the lookahead shows a comparison operator, or
// as a regex when the word is wrapped in slashes.
func (p *Parser) parseWordOrCompare() (*Node, bool) {
	name := p.cur.Text
	if op, ok := compareOpForToken(p.lexer.PeekToken().Kind); ok {
		p.advance() // onto the operator
		p.advance() // onto the value
		if p.cur.Kind != TokenWord {
			return nil, false
		}
		value := p.cur.Text
		p.advance()
		return Compare(name, op, value), true
	}
	p.advance()
	if len(name) >= 2 && strings.HasPrefix(name, "/") && strings.HasSuffix(name, "/") {
		return Regex(name[1 : len(name)-1]), true
	}
	return Word(name), true
}

func compareOpForToken(kind TokenKind) (CompareOp, bool) {
	switch kind {
	case TokenEqual:
		return CompareEq, true
	case TokenContains:
		return CompareContains, true
	case TokenSmaller:
		return CompareSmaller, true
	case TokenSmallerEq:
		return CompareSmallerEq, true
	case TokenGreater:
		return CompareGreater, true
	case TokenGreaterEq:
		return CompareGreaterEq, true
	default:
		return 0, false
	}
}

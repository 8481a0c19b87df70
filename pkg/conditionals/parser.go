package conditionals

import "fmt"

type parser struct {
	src    string
	tokens []token
	pos    int
}

func newParser(src string) (*parser, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, tokens: tokens}, nil
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: tok.pos, Msg: fmt.Sprintf(format, args...)}
}

// isOp reports whether the next token is one of the given operators or keywords.
func (p *parser) isOp(ops ...string) (string, bool) {
	tok := p.peek()
	if tok.kind != tokOp && tok.kind != tokIdent {
		return "", false
	}
	for _, op := range ops {
		if tok.text == op {
			return op, true
		}
	}
	return "", false
}

func (p *parser) skipSeps() {
	for p.peek().kind == tokSep {
		p.advance()
	}
}

// parseExpr parses: or
func (p *parser) parseExpr() (node, error) {
	return p.parseOr()
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.isOp("or", "||"); !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicalOp{and: false, left: left, right: right}
	}
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.isOp("and", "&&"); !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &logicalOp{and: true, left: left, right: right}
	}
}

func (p *parser) parseNot() (node, error) {
	if _, ok := p.isOp("not", "!"); ok {
		p.advance()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notOp{x: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	op, ok := p.isOp("==", "!=", "<", "<=", ">", ">=")
	if !ok {
		return left, nil
	}
	p.advance()
	right, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if _, chained := p.isOp("==", "!=", "<", "<=", ">", ">="); chained {
		return nil, p.errorf(p.peek(), "chained comparisons are not supported")
	}
	return &binaryOp{op: op, left: left, right: right}, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("+", "-")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) parseMultiplicative() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.isOp("*", "/", "%")
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &binaryOp{op: op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	if _, ok := p.isOp("-"); ok {
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negOp{x: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	tok := p.advance()
	switch tok.kind {
	case tokInt:
		return &literal{v: Int(tok.num)}, nil
	case tokString:
		return &literal{v: String(tok.text)}, nil
	case tokLParen:
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.errorf(p.peek(), "expected )")
		}
		p.advance()
		return x, nil
	case tokIdent:
		switch tok.text {
		case "True", "true":
			return &literal{v: Bool(true)}, nil
		case "False", "false":
			return &literal{v: Bool(false)}, nil
		case "and", "or", "not":
			return nil, p.errorf(tok, "unexpected keyword %q", tok.text)
		}
		if p.peek().kind == tokLBracket {
			if tok.text != VisitsVar {
				return nil, p.errorf(tok, "only %s can be indexed", VisitsVar)
			}
			p.advance()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tokRBracket {
				return nil, p.errorf(p.peek(), "expected ]")
			}
			p.advance()
			return &visitIndex{key: key}, nil
		}
		return &variable{name: tok.text}, nil
	case tokEOF:
		return nil, p.errorf(tok, "unexpected end of input")
	default:
		return nil, p.errorf(tok, "unexpected %q", tok.text)
	}
}

// parseStatement parses: IDENT ('=' | '+=' | '-=') expr
func (p *parser) parseStatement() (*assignment, error) {
	tok := p.advance()
	if tok.kind != tokIdent {
		return nil, p.errorf(tok, "expected variable name")
	}
	switch tok.text {
	case "True", "true", "False", "false", "and", "or", "not":
		return nil, &SyntaxError{Source: p.src, Pos: tok.pos, Msg: fmt.Sprintf("cannot assign to %q", tok.text), Err: ErrReservedName}
	case VisitsVar:
		return nil, &SyntaxError{Source: p.src, Pos: tok.pos, Msg: fmt.Sprintf("%s is read-only", VisitsVar), Err: ErrReservedName}
	}
	op, ok := p.isOp("=", "+=", "-=")
	if !ok {
		return nil, p.errorf(p.peek(), "expected =, += or -=")
	}
	p.advance()
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &assignment{name: tok.text, op: op, value: value}, nil
}

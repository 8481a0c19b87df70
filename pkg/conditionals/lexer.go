package conditionals

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokString
	tokIdent
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokSep // ';' or newline
)

type token struct {
	kind tokenKind
	text string // identifier, operator or decoded string literal
	num  int64
	pos  int
}

// twoCharOps must be checked before single-character operators.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||", "+=", "-="}

const singleCharOps = "=<>+-*/%!"

type lexer struct {
	src    string
	pos    int
	tokens []token
}

func tokenize(src string) ([]token, error) {
	lx := &lexer{src: src}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		lx.tokens = append(lx.tokens, tok)
		if tok.kind == tokEOF {
			return lx.tokens, nil
		}
	}
}

func (lx *lexer) errorf(pos int, msg string) error {
	return &SyntaxError{Source: lx.src, Pos: pos, Msg: msg}
}

func (lx *lexer) next() (token, error) {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		if c == ' ' || c == '\t' || c == '\r' {
			lx.pos++
			continue
		}
		break
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, pos: lx.pos}, nil
	}

	start := lx.pos
	c := lx.src[lx.pos]
	switch {
	case c == '\n' || c == ';':
		lx.pos++
		return token{kind: tokSep, text: string(c), pos: start}, nil
	case c == '(':
		lx.pos++
		return token{kind: tokLParen, text: "(", pos: start}, nil
	case c == ')':
		lx.pos++
		return token{kind: tokRParen, text: ")", pos: start}, nil
	case c == '[':
		lx.pos++
		return token{kind: tokLBracket, text: "[", pos: start}, nil
	case c == ']':
		lx.pos++
		return token{kind: tokRBracket, text: "]", pos: start}, nil
	case c == '"' || c == '\'':
		return lx.lexString(c)
	case c >= '0' && c <= '9':
		for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
			lx.pos++
		}
		n, err := strconv.ParseInt(lx.src[start:lx.pos], 10, 64)
		if err != nil {
			return token{}, lx.errorf(start, "integer literal out of range")
		}
		return token{kind: tokInt, text: lx.src[start:lx.pos], num: n, pos: start}, nil
	}

	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if r == '_' || unicode.IsLetter(r) {
		for lx.pos < len(lx.src) {
			r, size = utf8.DecodeRuneInString(lx.src[lx.pos:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			lx.pos += size
		}
		return token{kind: tokIdent, text: lx.src[start:lx.pos], pos: start}, nil
	}

	for _, op := range twoCharOps {
		if strings.HasPrefix(lx.src[lx.pos:], op) {
			lx.pos += len(op)
			return token{kind: tokOp, text: op, pos: start}, nil
		}
	}
	if strings.IndexByte(singleCharOps, c) >= 0 {
		lx.pos++
		return token{kind: tokOp, text: string(c), pos: start}, nil
	}

	return token{}, lx.errorf(start, "unexpected character "+strconv.QuoteRune(r))
}

func (lx *lexer) lexString(quote byte) (token, error) {
	start := lx.pos
	lx.pos++
	var sb strings.Builder
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch c {
		case quote:
			lx.pos++
			return token{kind: tokString, text: sb.String(), pos: start}, nil
		case '\\':
			if lx.pos+1 >= len(lx.src) {
				return token{}, lx.errorf(lx.pos, "unterminated escape")
			}
			esc := lx.src[lx.pos+1]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(esc)
			}
			lx.pos += 2
		case '\n':
			return token{}, lx.errorf(lx.pos, "newline in string literal")
		default:
			sb.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, lx.errorf(start, "unterminated string literal")
}

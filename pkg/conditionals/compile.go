package conditionals

import (
	"errors"
	"strings"
)

// Expr is a compiled boolean/value expression, e.g. `has_key and times_visited["hall"] > 1`.
type Expr struct {
	src  string
	root node
}

// Compile parses a condition expression.
func Compile(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &SyntaxError{Source: src, Msg: "empty expression"}
	}
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokSep && p.peek().text == "\n" {
		p.advance()
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.errorf(tok, "unexpected %q after expression", tok.text)
	}
	return &Expr{src: src, root: root}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and fixtures.
func MustCompile(src string) *Expr {
	e, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return e.src }

// Eval evaluates the expression against a read-only view of the game state.
func (e *Expr) Eval(gs GameStateView) (Value, error) {
	v, err := e.root.eval(gs)
	if err != nil {
		return Value{}, wrapEvalError(e.src, err)
	}
	return v, nil
}

// Test evaluates the expression and reports its truthiness.
func (e *Expr) Test(gs GameStateView) (bool, error) {
	v, err := e.Eval(gs)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

type assignment struct {
	name  string
	op    string // "=", "+=" or "-="
	value node
}

// Program is a compiled sequence of assignments, e.g. `has_key = 1; coins -= 2`.
type Program struct {
	src   string
	stmts []*assignment
}

// CompileProgram parses a side-effect statement list. Statements are
// separated by ';' or newlines.
func CompileProgram(src string) (*Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	prog := &Program{src: src}
	p.skipSeps()
	for p.peek().kind != tokEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.stmts = append(prog.stmts, stmt)
		if tok := p.peek(); tok.kind != tokSep && tok.kind != tokEOF {
			return nil, p.errorf(tok, "expected ; or newline, got %q", tok.text)
		}
		p.skipSeps()
	}
	if len(prog.stmts) == 0 {
		return nil, &SyntaxError{Source: src, Msg: "empty statement list"}
	}
	return prog, nil
}

// MustCompileProgram is like CompileProgram but panics on error.
func MustCompileProgram(src string) *Program {
	prog, err := CompileProgram(src)
	if err != nil {
		panic(err)
	}
	return prog
}

func (p *Program) String() string { return p.src }

// Exec runs the statements in order. Each statement sees the writes of the
// ones before it; the first failure stops execution.
func (p *Program) Exec(gs MutableGameState) error {
	for _, stmt := range p.stmts {
		v, err := stmt.value.eval(gs)
		if err != nil {
			return wrapEvalError(p.src, err)
		}
		if stmt.op != "=" {
			cur, ok := gs.Lookup(stmt.name)
			if !ok {
				return &EvalError{Source: p.src, Name: stmt.name, Err: ErrUndefinedVariable}
			}
			v, err = applyBinary(stmt.op[:1], cur, v)
			if err != nil {
				return wrapEvalError(p.src, err)
			}
		}
		gs.Assign(stmt.name, v)
	}
	return nil
}

func wrapEvalError(src string, err error) error {
	var f *evalFailure
	if errors.As(err, &f) {
		return &EvalError{Source: src, Name: f.name, Err: f.err}
	}
	return &EvalError{Source: src, Err: err}
}

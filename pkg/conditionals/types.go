package conditionals

import (
	"errors"
	"fmt"
	"strconv"
)

// VisitsVar is the reserved variable holding per-location visit counts.
// Expressions read it as times_visited["location_id"].
const VisitsVar = "times_visited"

var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrReservedName      = errors.New("reserved name")
)

// GameStateView provides the minimal read access needed to evaluate conditionals
// This avoids import cycles with the state package
type GameStateView interface {
	Lookup(name string) (Value, bool)
	Visits(locationID string) int
}

// MutableGameState is a GameStateView that effects may write to
type MutableGameState interface {
	GameStateView
	Assign(name string, v Value)
}

// Kind identifies the primitive type held by a Value
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a primitive game variable: a bool, an integer or a string.
// The zero Value is false.
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
}

func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(i int64) Value     { return Value{kind: KindInt, i: i} }
func String(s string) Value { return Value{kind: KindString, s: s} }

func (v Value) Kind() Kind { return v.kind }

// Truthy reports whether v counts as true in a condition: false, 0 and "" do not.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	default:
		return v.s != ""
	}
}

// AsInt returns the numeric value of an int or bool.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsString returns the string held by v, if it holds one.
func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return v.s
	}
}

// GoString renders v the way it would be written in an expression.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}

// Equal compares two values. Bools and ints compare numerically; any other
// mix of kinds is unequal.
func (v Value) Equal(o Value) bool {
	if v.kind == KindString || o.kind == KindString {
		return v.kind == o.kind && v.s == o.s
	}
	a, _ := v.AsInt()
	b, _ := o.AsInt()
	return a == b
}

// SyntaxError reports an expression or statement that could not be parsed.
type SyntaxError struct {
	Source string
	Pos    int
	Msg    string
	Err    error // set for assignments to reserved names
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d in %q: %s", e.Pos, e.Source, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// EvalError reports a failure while evaluating a compiled expression.
type EvalError struct {
	Source string
	Name   string // offending variable, if any
	Err    error
}

func (e *EvalError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("evaluating %q: %v: %s", e.Source, e.Err, e.Name)
	}
	return fmt.Sprintf("evaluating %q: %v", e.Source, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }

package conditionals

import "fmt"

type node interface {
	eval(env GameStateView) (Value, error)
}

type literal struct{ v Value }

type variable struct{ name string }

type visitIndex struct{ key node }

type notOp struct{ x node }

type negOp struct{ x node }

type logicalOp struct {
	and         bool
	left, right node
}

type binaryOp struct {
	op          string
	left, right node
}

// evalFailure is returned by nodes; Expr and Program attach the source text.
type evalFailure struct {
	name string
	err  error
}

func (f *evalFailure) Error() string { return f.err.Error() }

func failf(sentinel error, format string, args ...any) error {
	return &evalFailure{err: fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)}
}

func (n *literal) eval(GameStateView) (Value, error) { return n.v, nil }

func (n *variable) eval(env GameStateView) (Value, error) {
	if n.name == VisitsVar {
		return Value{}, failf(ErrTypeMismatch, "%s must be indexed by a location id", VisitsVar)
	}
	v, ok := env.Lookup(n.name)
	if !ok {
		return Value{}, &evalFailure{name: n.name, err: ErrUndefinedVariable}
	}
	return v, nil
}

func (n *visitIndex) eval(env GameStateView) (Value, error) {
	key, err := n.key.eval(env)
	if err != nil {
		return Value{}, err
	}
	id, ok := key.AsString()
	if !ok {
		return Value{}, failf(ErrTypeMismatch, "%s index must be a string, got %s", VisitsVar, key.Kind())
	}
	return Int(int64(env.Visits(id))), nil
}

func (n *notOp) eval(env GameStateView) (Value, error) {
	x, err := n.x.eval(env)
	if err != nil {
		return Value{}, err
	}
	return Bool(!x.Truthy()), nil
}

func (n *negOp) eval(env GameStateView) (Value, error) {
	x, err := n.x.eval(env)
	if err != nil {
		return Value{}, err
	}
	i, ok := x.AsInt()
	if !ok {
		return Value{}, failf(ErrTypeMismatch, "cannot negate %s", x.Kind())
	}
	return Int(-i), nil
}

func (n *logicalOp) eval(env GameStateView) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return Value{}, err
	}
	if n.and && !left.Truthy() {
		return Bool(false), nil
	}
	if !n.and && left.Truthy() {
		return Bool(true), nil
	}
	right, err := n.right.eval(env)
	if err != nil {
		return Value{}, err
	}
	return Bool(right.Truthy()), nil
}

func (n *binaryOp) eval(env GameStateView) (Value, error) {
	left, err := n.left.eval(env)
	if err != nil {
		return Value{}, err
	}
	right, err := n.right.eval(env)
	if err != nil {
		return Value{}, err
	}
	return applyBinary(n.op, left, right)
}

func applyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "==":
		return Bool(left.Equal(right)), nil
	case "!=":
		return Bool(!left.Equal(right)), nil
	}

	ls, lIsStr := left.AsString()
	rs, rIsStr := right.AsString()
	if lIsStr && rIsStr {
		switch op {
		case "+":
			return String(ls + rs), nil
		case "<":
			return Bool(ls < rs), nil
		case "<=":
			return Bool(ls <= rs), nil
		case ">":
			return Bool(ls > rs), nil
		case ">=":
			return Bool(ls >= rs), nil
		}
		return Value{}, failf(ErrTypeMismatch, "operator %s not defined on strings", op)
	}

	li, lok := left.AsInt()
	ri, rok := right.AsInt()
	if !lok || !rok {
		return Value{}, failf(ErrTypeMismatch, "%s %s %s", left.Kind(), op, right.Kind())
	}
	switch op {
	case "<":
		return Bool(li < ri), nil
	case "<=":
		return Bool(li <= ri), nil
	case ">":
		return Bool(li > ri), nil
	case ">=":
		return Bool(li >= ri), nil
	case "+":
		return Int(li + ri), nil
	case "-":
		return Int(li - ri), nil
	case "*":
		return Int(li * ri), nil
	case "/", "%":
		if ri == 0 {
			return Value{}, failf(ErrDivisionByZero, "%d %s 0", li, op)
		}
		if op == "/" {
			return Int(floorDiv(li, ri)), nil
		}
		return Int(li - floorDiv(li, ri)*ri), nil
	}
	return Value{}, failf(ErrTypeMismatch, "unknown operator %s", op)
}

// floorDiv rounds toward negative infinity so that / and % agree with each
// other for negative operands.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

package expr

import "math"

// arity describes how many arguments a function accepts. max < 0 means unbounded.
type arity struct {
	min, max int
}

var functions = map[string]arity{
	"abs":   {1, 1},
	"sqrt":  {1, 1},
	"round": {1, 2},
	"min":   {2, -1},
	"max":   {2, -1},
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Check walks n and reports the first construct outside the allowed grammar:
// numbers, bound names, constants, unary and binary arithmetic, and calls to
// abs, sqrt, round, min and max. bound reports whether a name has a binding.
func Check(n Node, bound func(name string) bool) error {
	switch n := n.(type) {
	case *Num:
		return nil
	case *Name:
		if _, ok := functions[n.Ident]; ok && !bound(n.Ident) {
			return errorf(n.At, "function %s used as a value", n.Ident)
		}

		if bound(n.Ident) {
			return nil
		}

		if _, ok := constants[n.Ident]; ok {
			return nil
		}

		return errorf(n.At, "unknown name %q", n.Ident)
	case *Unary:
		return Check(n.X, bound)
	case *Binary:
		if err := Check(n.L, bound); err != nil {
			return err
		}

		return Check(n.R, bound)
	case *Call:
		return checkCall(n, bound)
	case *Str:
		return errorf(n.At, "string literals are not allowed")
	case *Attr:
		return errorf(n.At, "attribute access is not allowed")
	case *Index:
		return errorf(n.At, "subscripts are not allowed")
	default:
		return errorf(n.Pos(), "unsupported expression")
	}
}

func checkCall(c *Call, bound func(string) bool) error {
	fn, ok := c.Func.(*Name)
	if !ok {
		return errorf(c.At, "only named functions may be called")
	}

	ar, ok := functions[fn.Ident]
	if !ok {
		return errorf(fn.At, "function %q is not allowed", fn.Ident)
	}

	if len(c.Args) < ar.min || (ar.max >= 0 && len(c.Args) > ar.max) {
		return errorf(c.At, "wrong number of arguments to %s: %d", fn.Ident, len(c.Args))
	}

	for _, a := range c.Args {
		if err := Check(a, bound); err != nil {
			return err
		}
	}

	return nil
}

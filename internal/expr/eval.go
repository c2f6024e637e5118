package expr

import (
	"math"
	"strings"
)

// Evaluate parses, checks and evaluates expression against bindings.
//
// "^" is read as "**". An expression whose first non-blank character is one of
// + - * / is read as applying to the current value, so "/2" means "v/2".
// Any failure, including division by zero, a negative sqrt argument or a
// non-finite result, wraps ErrNoResult.
func Evaluate(expression string, bindings map[string]float64) (float64, error) {
	src := strings.TrimSpace(strings.ReplaceAll(expression, "^", "**"))
	if src == "" {
		return 0, errorf(0, "empty expression")
	}

	if strings.ContainsRune("+-*/", rune(src[0])) {
		src = "v" + src
	}

	n, err := Parse(src)
	if err != nil {
		return 0, err
	}

	bound := func(name string) bool {
		_, ok := bindings[name]
		return ok
	}

	if err := Check(n, bound); err != nil {
		return 0, err
	}

	v, err := eval(n, bindings)
	if err != nil {
		return 0, err
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errorf(-1, "result is not a finite number")
	}

	return v, nil
}

// eval assumes n passed Check.
func eval(n Node, bindings map[string]float64) (float64, error) {
	switch n := n.(type) {
	case *Num:
		return n.Value, nil
	case *Name:
		if v, ok := bindings[n.Ident]; ok {
			return v, nil
		}

		return constants[n.Ident], nil
	case *Unary:
		x, err := eval(n.X, bindings)
		if err != nil {
			return 0, err
		}

		if n.Op == KindMinus {
			return -x, nil
		}

		return x, nil
	case *Binary:
		l, err := eval(n.L, bindings)
		if err != nil {
			return 0, err
		}

		r, err := eval(n.R, bindings)
		if err != nil {
			return 0, err
		}

		return binary(n, l, r)
	case *Call:
		return call(n, bindings)
	default:
		return 0, errorf(n.Pos(), "unsupported expression")
	}
}

func binary(n *Binary, l, r float64) (float64, error) {
	switch n.Op {
	case KindPlus:
		return l + r, nil
	case KindMinus:
		return l - r, nil
	case KindStar:
		return l * r, nil
	case KindSlash:
		if r == 0 {
			return 0, errorf(n.At, "division by zero")
		}

		return l / r, nil
	case KindPercent:
		if r == 0 {
			return 0, errorf(n.At, "modulo by zero")
		}

		// sign follows the divisor: -7 % 3 == 2
		return l - r*math.Floor(l/r), nil
	case KindPow:
		if l == 0 && r < 0 {
			return 0, errorf(n.At, "zero raised to a negative power")
		}

		return math.Pow(l, r), nil
	default:
		return 0, errorf(n.At, "unsupported operator %s", n.Op)
	}
}

func call(c *Call, bindings map[string]float64) (float64, error) {
	args := make([]float64, len(c.Args))

	for i, a := range c.Args {
		v, err := eval(a, bindings)
		if err != nil {
			return 0, err
		}

		args[i] = v
	}

	switch name := c.Func.(*Name).Ident; name {
	case "abs":
		return math.Abs(args[0]), nil
	case "sqrt":
		if args[0] < 0 {
			return 0, errorf(c.At, "sqrt of negative number")
		}

		return math.Sqrt(args[0]), nil
	case "round":
		return round(c, args)
	case "min":
		out := args[0]
		for _, v := range args[1:] {
			out = math.Min(out, v)
		}

		return out, nil
	case "max":
		out := args[0]
		for _, v := range args[1:] {
			out = math.Max(out, v)
		}

		return out, nil
	default:
		return 0, errorf(c.At, "function %q is not allowed", name)
	}
}

// round rounds half to even, optionally at a number of decimal digits.
func round(c *Call, args []float64) (float64, error) {
	if len(args) == 1 {
		return math.RoundToEven(args[0]), nil
	}

	digits := args[1]
	if digits != math.Trunc(digits) {
		return 0, errorf(c.At, "round digits must be an integer")
	}

	scale := math.Pow(10, digits)

	return math.RoundToEven(args[0]*scale) / scale, nil
}

package fixer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"dynconf/internal/common"
	"dynconf/internal/expr"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// fixNumeric coerces a number, optionally evaluating arithmetic first, and
// applies the field's bounds under the numeric policy.
func fixNumeric(original any, f *schema.FieldSpec, p policy.Effective, env Env) Outcome {
	if p.Numeric == policy.NumericBypass {
		return bypassed(original)
	}

	work := original

	var evalErr error

	if s, ok := original.(string); ok && p.EvalExpressions && !isPlainNumber(s) {
		v, err := expr.Evaluate(s, bindings(f.Bounds, env.Current))
		if err != nil {
			evalErr = fmt.Errorf("%w: %w", ErrEvaluationRejected, err)
		} else {
			work = v
		}
	}

	n, err := coerceNumber(work, f.Type)
	if err != nil {
		return failed(original, errors.Join(err, evalErr))
	}

	fixed, ok := constrain(n, f.Bounds, p.Numeric == policy.NumericClamp)
	if !ok {
		return rejected(original, violation("%s is outside %s", schema.FormatNumber(n), f.Bounds.String()))
	}

	return settle(original, fixed)
}

// coerceNumber converts v for a field of type t: int64 for int fields, float64
// for float fields, and whichever fits for untyped fields with bounds.
func coerceNumber(v any, t schema.Type) (any, error) {
	var (
		n   any
		err error
	)

	switch t {
	case schema.TypeInt, schema.TypeFloat:
		n, err = t.Coerce(v)
	default:
		n, err = schema.CoerceNumber(v)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCoercionFailure, err)
	}

	return n, nil
}

// isPlainNumber reports whether s parses as a signed literal. "+10" and "-5"
// are values, not offsets from the current value.
func isPlainNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// bindings exposes the current value as v and x, and the bounds as min and max.
func bindings(b schema.Bounds, current any) map[string]float64 {
	vars := make(map[string]float64, 4)

	if cur, ok := common.AsFloat(current); ok {
		vars["v"] = cur
		vars["x"] = cur
	}

	if lo, _, ok := b.Lower(); ok {
		vars["min"] = lo
	}

	if hi, _, ok := b.Upper(); ok {
		vars["max"] = hi
	}

	return vars
}

// constrain checks n (int64 or float64) against b. With repair set, values
// outside the bounds are clamped onto the nearest admissible value and snapped
// to multiple_of. The second result reports whether the returned value
// satisfies b.
func constrain(n any, b schema.Bounds, repair bool) (any, bool) {
	v, _ := common.AsFloat(n)
	if b.Contains(v) {
		return n, true
	}

	if !repair {
		return n, false
	}

	_, isInt := n.(int64)

	lo, hi, ok := admissible(b, isInt)
	if !ok {
		return n, false
	}

	c := math.Min(math.Max(v, lo), hi)

	if b.MultipleOf != nil && !schema.IsMultiple(c, *b.MultipleOf) {
		c = snap(c, *b.MultipleOf, lo, hi)
	}

	if isInt {
		i, err := safecast.Convert[int64](c)
		if err != nil {
			return n, false
		}

		return i, b.Contains(c)
	}

	return c, b.Contains(c)
}

// admissible returns the closed interval of values allowed by b. Exclusive
// bounds are nudged to the next representable value: the next integer for int
// fields, the next float64 otherwise.
func admissible(b schema.Bounds, isInt bool) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)

	if l, excl, set := b.Lower(); set {
		switch {
		case isInt && excl:
			lo = math.Floor(l) + 1
		case isInt:
			lo = math.Ceil(l)
		case excl:
			lo = math.Nextafter(l, math.Inf(1))
		default:
			lo = l
		}
	}

	if h, excl, set := b.Upper(); set {
		switch {
		case isInt && excl:
			hi = math.Ceil(h) - 1
		case isInt:
			hi = math.Floor(h)
		case excl:
			hi = math.Nextafter(h, math.Inf(-1))
		default:
			hi = h
		}
	}

	return lo, hi, lo <= hi
}

// snap rounds v to the nearest multiple of m, preferring the neighbouring
// multiple when rounding leaves [lo, hi]. v is returned unchanged when no
// multiple fits.
func snap(v, m, lo, hi float64) float64 {
	q := v / m

	for _, c := range []float64{math.Round(q) * m, math.Floor(q) * m, math.Ceil(q) * m} {
		if c >= lo && c <= hi {
			return c
		}
	}

	return v
}

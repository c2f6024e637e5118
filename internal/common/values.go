package common

import (
	"math"
	"reflect"
)

// AsFloat returns v as a float64 when v holds a Go number. Booleans are not numbers.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Equal compares two decoded values. Numbers compare by value across Go types,
// so int64(2) equals 2.0; everything else uses reflect.DeepEqual.
func Equal(a, b any) bool {
	fa, okA := AsFloat(a)
	fb, okB := AsFloat(b)

	if okA && okB {
		return fa == fb || (math.IsNaN(fa) && math.IsNaN(fb))
	}

	return reflect.DeepEqual(a, b)
}

// IndexOf returns the index of the first element of vs equal to v, or -1.
func IndexOf(vs []any, v any) int {
	for i, o := range vs {
		if Equal(o, v) {
			return i
		}
	}

	return -1
}

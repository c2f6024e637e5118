package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"fortio.org/safecast"

	"dynconf/internal/common"
	"dynconf/internal/match"
	"dynconf/internal/tree"
)

// ErrCoerce is wrapped by every Coerce failure.
var ErrCoerce = errors.New("cannot coerce")

// Coerce converts v into the canonical Go value for t: int64, float64, string,
// bool, time.Time, []any or map[string]any. TypeAny accepts anything.
func (t Type) Coerce(v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("%w null to %s", ErrCoerce, t)
	}

	switch t {
	case TypeAny, "":
		return tree.Normalize(v), nil
	case TypeInt:
		return toInt(v)
	case TypeFloat:
		n, err := CoerceNumber(v)
		if err != nil {
			return nil, err
		}

		f, _ := common.AsFloat(n)

		return f, nil
	case TypeString, TypePath:
		return toString(v)
	case TypeBool:
		return toBool(v)
	case TypeDatetime:
		return toTime(v)
	case TypeList, TypeRange:
		return toList(v)
	case TypeRecord:
		if m, ok := tree.Normalize(v).(map[string]any); ok {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w %T to %s", ErrCoerce, v, t)
}

// CoerceNumber converts v into int64 or float64, keeping integers integral.
// Strings are parsed; booleans and non-finite numbers are refused.
func CoerceNumber(v any) (any, error) {
	switch n := v.(type) {
	case string:
		return parseNumber(n)
	case json.Number:
		return parseNumber(string(n))
	case float32:
		return finite(float64(n))
	case float64:
		return finite(n)
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint:
		return convert[int64](n)
	case uint64:
		return convert[int64](n)
	default:
		return nil, fmt.Errorf("%w %T to number", ErrCoerce, v)
	}
}

func parseNumber(s string) (any, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("%w %q to number", ErrCoerce, s)
	}

	return finite(f)
}

func finite(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w %v: not a finite number", ErrCoerce, f)
	}

	return f, nil
}

func convert[Out safecast.Number, In safecast.Number](n In) (any, error) {
	out, err := safecast.Convert[Out](n)
	if err != nil {
		return nil, fmt.Errorf("%w %v: %w", ErrCoerce, n, err)
	}

	return out, nil
}

func toInt(v any) (any, error) {
	n, err := CoerceNumber(v)
	if err != nil {
		return nil, err
	}

	if f, ok := n.(float64); ok {
		i, err := convert[int64](f)
		if err != nil {
			return nil, fmt.Errorf("%w %v to int: not an integer", ErrCoerce, f)
		}

		return i, nil
	}

	return n, nil
}

// FormatNumber renders an int64 or float64 the way a user would type it.
func FormatNumber(v any) string {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func toString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return string(s), nil
	case bool:
		return strconv.FormatBool(s), nil
	case fmt.Stringer:
		return s.String(), nil
	}

	if n, err := CoerceNumber(v); err == nil {
		return FormatNumber(n), nil
	}

	return nil, fmt.Errorf("%w %T to string", ErrCoerce, v)
}

var defaultBoolean = NewBooleanFormat()

func toBool(v any) (any, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}

	if b, ok := defaultBoolean.Recognize(v); ok {
		return b, nil
	}

	return nil, fmt.Errorf("%w %v to bool", ErrCoerce, v)
}

var defaultDatetime = NewDatetimeFormat()

func toTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		if parsed, ok := defaultDatetime.Parse(t); ok {
			return parsed, nil
		}
	}

	return nil, fmt.Errorf("%w %v to datetime", ErrCoerce, v)
}

func toList(v any) (any, error) {
	if l, ok := tree.Normalize(v).([]any); ok {
		return l, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w %T to list", ErrCoerce, v)
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = tree.Normalize(rv.Index(i).Interface())
	}

	return out, nil
}

// Recognize maps v onto a boolean using the word lists. Matching is caseless;
// numbers are compared in their written form, so 1 matches "1".
func (b *BooleanFormat) Recognize(v any) (value, ok bool) {
	var key string

	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		key = match.Fold(strings.TrimSpace(x))
	default:
		n, err := CoerceNumber(v)
		if err != nil {
			return false, false
		}

		key = FormatNumber(n)
	}

	for _, w := range b.TrueValues {
		if match.Fold(w) == key {
			return true, true
		}
	}

	for _, w := range b.FalseValues {
		if match.Fold(w) == key {
			return false, true
		}
	}

	return false, false
}

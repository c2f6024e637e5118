package fixer

import (
	"strconv"
	"strings"

	"dynconf/internal/common"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// fixRange turns "3-7", [3, 7] or, when allowed, 5 into a checked pair.
func fixRange(original any, rf *schema.RangeFormat, p policy.Effective) Outcome {
	if p.Range == policy.RangeBypass {
		return bypassed(original)
	}

	items, err := rangeItems(original, rf)
	if err != nil {
		return rejected(original, err)
	}

	pair, err := fixPair(items, rf, p.Range)
	if err != nil {
		return rejected(original, err)
	}

	return settle(original, pair)
}

// rangeItems extracts the two raw items of a range value.
func rangeItems(v any, rf *schema.RangeFormat) ([2]any, error) {
	switch x := tree.Normalize(v).(type) {
	case string:
		s := strings.TrimSpace(x)
		if rf.InputSeparator != "" {
			if a, b, ok := splitRange(s, rf.InputSeparator); ok {
				return [2]any{a, b}, nil
			}
		}

		if rf.AllowSingleValueAsRange && isPlainNumber(s) {
			return [2]any{s, s}, nil
		}

		return [2]any{}, structural("%q is not a range of two values separated by %q", s, rf.InputSeparator)
	case []any:
		if len(x) != 2 {
			return [2]any{}, structural("range needs 2 items, got %d", len(x))
		}

		return [2]any{x[0], x[1]}, nil
	case int64, float64:
		if rf.AllowSingleValueAsRange {
			return [2]any{x, x}, nil
		}

		return [2]any{}, structural("single value %v is not a range", x)
	default:
		return [2]any{}, structural("%T is not a range", v)
	}
}

// splitRange splits s around sep. When sep occurs more than once, as with
// negative numbers around "-", the first split leaving two numbers wins.
func splitRange(s, sep string) (string, string, bool) {
	if strings.Count(s, sep) == 1 {
		i := strings.Index(s, sep)
		if i > 0 && i+len(sep) < len(s) {
			return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):]), true
		}
	}

	for i := 1; i < len(s); i++ {
		if !strings.HasPrefix(s[i:], sep) {
			continue
		}

		a, b := strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+len(sep):])
		if isNumber(a) && isNumber(b) {
			return a, b, true
		}
	}

	return "", "", false
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// fixPair coerces and checks both items, then orders them.
func fixPair(items [2]any, rf *schema.RangeFormat, pol policy.Range) ([]any, error) {
	bounds := rf.ItemBounds()
	out := make([]any, 2)

	for i, it := range items {
		n, err := coerceNumber(it, rf.ItemType)
		if err != nil {
			return nil, err
		}

		switch pol {
		case policy.RangeClampItems:
			fixed, ok := constrain(n, bounds, true)
			if !ok {
				return nil, violation("range item %s cannot be brought into %s", schema.FormatNumber(n), bounds.String())
			}

			n = fixed
		case policy.RangeSwapIfReversed, policy.RangeReject:
			if _, ok := constrain(n, bounds, false); !ok {
				return nil, violation("range item %s is outside %s", schema.FormatNumber(n), bounds.String())
			}
		}

		out[i] = n
	}

	lo, _ := common.AsFloat(out[0])
	hi, _ := common.AsFloat(out[1])

	if rf.EnforceMinLEMax && lo > hi {
		switch pol {
		case policy.RangeClampItems, policy.RangeSwapIfReversed:
			out[0], out[1] = out[1], out[0]
		case policy.RangeReject:
			return nil, violation("range start %s is greater than end %s",
				schema.FormatNumber(out[0]), schema.FormatNumber(out[1]))
		}
	}

	return out, nil
}

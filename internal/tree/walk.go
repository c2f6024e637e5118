package tree

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Flatten returns the leaves of a map[string]any / []any tree keyed by dotted
// path. Empty records and sequences are kept as leaves.
func Flatten(tree any) map[string]any {
	out := make(map[string]any)
	flatten(tree, "", out)

	return out
}

func flatten(node any, prefix string, out map[string]any) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}

		return prefix + "." + k
	}

	switch n := node.(type) {
	case map[string]any:
		if len(n) == 0 && prefix != "" {
			out[prefix] = n
			return
		}

		for k, v := range n {
			flatten(v, join(k), out)
		}
	case []any:
		if len(n) == 0 {
			out[prefix] = n
			return
		}

		for i, v := range n {
			flatten(v, join(strconv.Itoa(i)), out)
		}
	default:
		out[prefix] = node
	}
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Normalize converts decoded data into the canonical tree shape: records become
// map[string]any, sequences []any, integers int64 and floats float64. Other
// scalars are returned unchanged. The input is not modified.
func Normalize(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = Normalize(v)
		}

		return out
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[fmt.Sprint(k)] = Normalize(v)
		}

		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Normalize(v)
		}

		return out
	case []map[string]any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Normalize(v)
		}

		return out
	case []string:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = v
		}

		return out
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint:
		if uint64(n) <= math.MaxInt64 {
			return int64(n)
		}

		return float64(n)
	case uint64:
		if n <= math.MaxInt64 {
			return int64(n)
		}

		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}

		if f, err := n.Float64(); err == nil {
			return f
		}

		return n.String()
	default:
		return node
	}
}

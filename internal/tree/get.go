package tree

import (
	"reflect"
	"strings"
)

// Get returns the value at path in tree.
func Get(tree any, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	return GetPath(tree, p)
}

// GetPath is Get for an already parsed path.
func GetPath(tree any, p Path) (any, error) {
	cur := tree

	for i, seg := range p {
		next, reason := child(cur, seg)
		if reason != "" {
			return nil, notFound(p, i, reason)
		}

		cur = next
	}

	return cur, nil
}

// Has reports whether path resolves in tree.
func Has(tree any, path string) bool {
	_, err := Get(tree, path)
	return err == nil
}

// child returns node[seg], or a non-empty reason when it does not exist.
func child(node any, seg Segment) (any, string) {
	switch n := node.(type) {
	case nil:
		return nil, "cannot index into null"
	case map[string]any:
		v, ok := n[seg.Name]
		if !ok {
			return nil, "no such key"
		}

		return v, ""
	case []any:
		if reason := checkIndex(seg, len(n), false); reason != "" {
			return nil, reason
		}

		return n[seg.Index], ""
	}

	rv := reflect.ValueOf(node)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, "cannot index into null"
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		f, ok := structField(rv.Type(), seg.Name)
		if !ok {
			return nil, "no such field"
		}

		return rv.FieldByIndex(f.Index).Interface(), ""
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, "map keys are not strings"
		}

		v := rv.MapIndex(reflect.ValueOf(seg.Name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, "no such key"
		}

		return v.Interface(), ""
	case reflect.Slice, reflect.Array:
		if reason := checkIndex(seg, rv.Len(), false); reason != "" {
			return nil, reason
		}

		return rv.Index(seg.Index).Interface(), ""
	default:
		return nil, "cannot index into " + rv.Kind().String()
	}
}

// checkIndex validates seg as an index into a sequence of length n.
// With appendOK, n itself is accepted.
func checkIndex(seg Segment, n int, appendOK bool) string {
	switch {
	case seg.Index < 0:
		return "sequence index must be a non-negative integer"
	case seg.Index < n, appendOK && seg.Index == n:
		return ""
	default:
		return "index out of range"
	}
}

// structField finds an exported field by Go name or by yaml/json tag name.
func structField(t reflect.Type, name string) (reflect.StructField, bool) {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}

		if f.Name == name || tagName(f, "yaml") == name || tagName(f, "json") == name {
			return f, true
		}
	}

	return reflect.StructField{}, false
}

func tagName(f reflect.StructField, key string) string {
	tag, ok := f.Tag.Lookup(key)
	if !ok {
		return ""
	}

	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}

	return name
}

package tree

import (
	"fmt"
	"maps"
	"reflect"
)

// Set returns a copy of tree with the value at path replaced by value.
//
// Missing keys in map[string]any records are created, including intermediate
// records. A sequence may grow by one element when the last segment equals its
// length. Sequences are never turned into records or the other way around.
func Set(tree any, path string, value any) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}

	return SetPath(tree, p, value)
}

// SetPath is Set for an already parsed path.
func SetPath(tree any, p Path, value any) (any, error) {
	if len(p) == 0 {
		return value, nil
	}

	return set(tree, p, 0, value)
}

func set(node any, p Path, i int, value any) (any, error) {
	if i == len(p) {
		return value, nil
	}

	seg := p[i]
	last := i == len(p)-1

	switch n := node.(type) {
	case nil:
		return nil, notFound(p, i, "cannot index into null")
	case map[string]any:
		cur, ok := n[seg.Name]
		if !ok && !last {
			cur = map[string]any{}
		}

		nv, err := set(cur, p, i+1, value)
		if err != nil {
			return nil, err
		}

		out := maps.Clone(n)
		out[seg.Name] = nv

		return out, nil
	case []any:
		if reason := checkIndex(seg, len(n), last); reason != "" {
			return nil, notFound(p, i, reason)
		}

		out := make([]any, len(n), len(n)+1)
		copy(out, n)

		if seg.Index == len(n) {
			return append(out, value), nil
		}

		nv, err := set(n[seg.Index], p, i+1, value)
		if err != nil {
			return nil, err
		}

		out[seg.Index] = nv

		return out, nil
	}

	rv, err := setValue(reflect.ValueOf(node), p, i, value)
	if err != nil {
		return nil, err
	}

	return rv.Interface(), nil
}

// setValue handles typed nodes: pointers, structs, typed maps and slices.
func setValue(rv reflect.Value, p Path, i int, value any) (reflect.Value, error) {
	seg := p[i]
	last := i == len(p)-1

	switch rv.Kind() {
	case reflect.Interface:
		if rv.IsNil() {
			return reflect.Value{}, notFound(p, i, "cannot index into null")
		}

		out, err := set(rv.Elem().Interface(), p, i, value)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(out), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return reflect.Value{}, notFound(p, i, "cannot index into null")
		}

		elem, err := setValue(rv.Elem(), p, i, value)
		if err != nil {
			return reflect.Value{}, err
		}

		np := reflect.New(rv.Type().Elem())
		np.Elem().Set(elem)

		return np, nil
	case reflect.Struct:
		f, ok := structField(rv.Type(), seg.Name)
		if !ok {
			return reflect.Value{}, notFound(p, i, "no such field")
		}

		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)

		nv, err := setChild(cp.FieldByIndex(f.Index), p, i+1, value)
		if err != nil {
			return reflect.Value{}, err
		}

		cp.FieldByIndex(f.Index).Set(nv)

		return cp, nil
	case reflect.Map:
		return setMap(rv, p, i, value)
	case reflect.Slice, reflect.Array:
		appendOK := last && rv.Kind() == reflect.Slice
		if reason := checkIndex(seg, rv.Len(), appendOK); reason != "" {
			return reflect.Value{}, notFound(p, i, reason)
		}

		var cp reflect.Value
		if rv.Kind() == reflect.Slice {
			cp = reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len()+1)
		} else {
			cp = reflect.New(rv.Type()).Elem()
		}

		reflect.Copy(cp, rv)

		if seg.Index == rv.Len() {
			nv, err := assign(value, rv.Type().Elem(), p)
			if err != nil {
				return reflect.Value{}, err
			}

			return reflect.Append(cp, nv), nil
		}

		nv, err := setChild(cp.Index(seg.Index), p, i+1, value)
		if err != nil {
			return reflect.Value{}, err
		}

		cp.Index(seg.Index).Set(nv)

		return cp, nil
	default:
		return reflect.Value{}, notFound(p, i, "cannot index into "+rv.Kind().String())
	}
}

func setMap(rv reflect.Value, p Path, i int, value any) (reflect.Value, error) {
	t := rv.Type()
	if t.Key().Kind() != reflect.String {
		return reflect.Value{}, notFound(p, i, "map keys are not strings")
	}

	key := reflect.ValueOf(p[i].Name).Convert(t.Key())

	cur := rv.MapIndex(key)
	if !cur.IsValid() {
		if i < len(p)-1 {
			return reflect.Value{}, notFound(p, i, "no such key")
		}

		cur = reflect.Zero(t.Elem())
	}

	nv, err := setChild(cur, p, i+1, value)
	if err != nil {
		return reflect.Value{}, err
	}

	cp := reflect.MakeMapWithSize(t, rv.Len()+1)

	iter := rv.MapRange()
	for iter.Next() {
		cp.SetMapIndex(iter.Key(), iter.Value())
	}

	cp.SetMapIndex(key, nv)

	return cp, nil
}

// setChild replaces the slot cur. At the end of the path value is stored
// directly, converted to the slot's type when that is lossless.
func setChild(cur reflect.Value, p Path, i int, value any) (reflect.Value, error) {
	if i == len(p) {
		return assign(value, cur.Type(), p)
	}

	return setValue(cur, p, i, value)
}

func assign(value any, t reflect.Type, p Path) (reflect.Value, error) {
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice:
			return reflect.Zero(t), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: cannot store null at %q (%s)", ErrIncompatible, p, t)
		}
	}

	v := reflect.ValueOf(value)
	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if isNumeric(v.Kind()) && isNumeric(t.Kind()) {
		c := v.Convert(t)
		if isFloat(v.Kind()) && isFloat(t.Kind()) {
			return c, nil
		}

		if c.Convert(v.Type()).Interface() == value {
			return c, nil
		}
	}

	if v.Kind() == reflect.String && t.Kind() == reflect.String {
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: cannot store %T at %q (%s)", ErrIncompatible, value, p, t)
}

func isNumeric(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || isFloat(k)
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

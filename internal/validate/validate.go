package validate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/cel-go/cel"

	"dynconf/internal/common"
	"dynconf/internal/match"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// Validator checks configuration trees against one schema snapshot.
type Validator struct {
	schema *schema.Schema
	rules  map[string]cel.Program
}

// New compiles the rule predicates of s. It fails if any rule does not compile.
func New(s *schema.Schema) (*Validator, error) {
	v := &Validator{schema: s, rules: make(map[string]cel.Program)}

	var errs []error

	s.Walk(func(f *schema.FieldSpec) {
		if f.Rule == "" {
			return
		}

		program, err := compileRule(f.Rule)
		if err != nil {
			errs = append(errs, fmt.Errorf("field %s: invalid rule %q: %w", f.Path(), f.Rule, err))
			return
		}

		v.rules[f.Path()] = program
	})

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return v, nil
}

// Validate is New followed by Validator.Validate.
func Validate(s *schema.Schema, input map[string]any) (map[string]any, error) {
	v, err := New(s)
	if err != nil {
		return nil, err
	}

	return v.Validate(input)
}

// Schema returns the schema v validates against.
func (v *Validator) Schema() *schema.Schema {
	return v.schema
}

// Validate returns the typed tree for input, or an *Error listing every
// violation. The input is not modified.
func (v *Validator) Validate(input map[string]any) (map[string]any, error) {
	c := &checker{v: v}

	out := c.record(input, v.schema.Fields(), "")
	if len(c.errs) > 0 {
		return nil, &Error{Schema: v.schema.Name(), Fields: c.errs}
	}

	return out, nil
}

type checker struct {
	v    *Validator
	errs []FieldError
}

func (c *checker) fail(path, code, format string, args ...any) {
	c.errs = append(c.errs, FieldError{Path: path, Code: code, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) record(input map[string]any, fields []*schema.FieldSpec, scope string) map[string]any {
	out := make(map[string]any, len(fields))
	declared := make(map[string]bool, len(fields))

	for _, f := range fields {
		declared[f.Name] = true

		raw, present := input[f.Name]
		if !present {
			switch {
			case f.HasDefault():
				raw = f.Default
			case f.Type == schema.TypeRecord:
				raw = map[string]any{}
			case f.Required:
				c.fail(f.Path(), "missing", "field is required")
				continue
			case f.Nullable:
				out[f.Name] = nil
				continue
			default:
				continue
			}
		}

		if val, ok := c.field(f, raw); ok {
			out[f.Name] = val
		}
	}

	for _, k := range tree.SortedKeys(input) {
		if declared[k] {
			continue
		}

		switch c.v.schema.Extra() {
		case schema.ExtraAllow:
			out[k] = tree.Normalize(input[k])
		case schema.ExtraForbid:
			c.fail(join(scope, k), "extra_forbidden", "undeclared field")
		}
	}

	return out
}

func (c *checker) field(f *schema.FieldSpec, raw any) (any, bool) {
	if raw == nil {
		if !f.Nullable {
			c.fail(f.Path(), "null", "null is not allowed")
			return nil, false
		}

		return nil, c.rule(f, nil)
	}

	before := len(c.errs)

	val := c.value(f, raw)
	if len(c.errs) > before {
		return nil, false
	}

	return val, c.rule(f, val)
}

func (c *checker) value(f *schema.FieldSpec, raw any) any {
	path := f.Path()

	switch fm := f.Format.(type) {
	case *schema.RangeFormat:
		return c.pair(path, raw, fm)
	case *schema.MultipleRangesFormat:
		return c.ranges(path, raw, fm)
	case *schema.MultipleChoiceFormat:
		return c.selections(path, raw, fm)
	case *schema.ListConversionFormat:
		return c.list(path, raw, fm)
	case *schema.BooleanFormat:
		b, ok := fm.Recognize(raw)
		if !ok {
			c.fail(path, "type", "%v is not a recognized boolean", raw)
		}

		return b
	case *schema.DatetimeFormat:
		return c.datetime(f, raw, fm)
	case *schema.PathFormat:
		val := c.scalar(f, raw)
		if s, ok := val.(string); ok {
			c.path(path, s, fm)
		}

		return val
	case *schema.SingleChoiceFormat:
		val := c.scalar(f, raw)
		if val != nil && !isOption(val, fm.Options, fm.CaseSensitive) {
			c.fail(path, "not_an_option", "%v is not one of %v", val, fm.Options)
		}

		return val
	}

	switch f.Type {
	case schema.TypeRecord:
		m, err := f.Type.Coerce(raw)
		if err != nil {
			c.fail(path, "type", "%v", err)
			return nil
		}

		return c.record(m.(map[string]any), f.Fields, path)
	case schema.TypeRange:
		rf := schema.NewRangeFormat()
		if f.ItemType != "" {
			rf.ItemType = f.ItemType
		}

		return c.pair(path, raw, rf)
	case schema.TypeList:
		return c.items(path, raw, f.ItemType)
	}

	return c.scalar(f, raw)
}

// scalar coerces raw to the field type and applies the field's own constraints.
func (c *checker) scalar(f *schema.FieldSpec, raw any) any {
	path := f.Path()

	val, err := f.Type.Coerce(raw)
	if err != nil {
		c.fail(path, "type", "%v", err)
		return nil
	}

	if !f.Bounds.IsZero() {
		c.number(path, val, f.Bounds)
	}

	if s, ok := val.(string); ok {
		c.text(path, s, f.Length, f.Regexp())
	}

	if len(f.Options) > 0 && f.Format == nil && !isOption(val, f.Options, true) {
		c.fail(path, "not_an_option", "%v is not one of %v", val, f.Options)
	}

	return val
}

func (c *checker) number(path string, val any, b schema.Bounds) {
	x, ok := common.AsFloat(val)
	if !ok {
		c.fail(path, "type", "%v is not a number", val)
		return
	}

	interval := b
	interval.MultipleOf = nil

	switch {
	case !interval.Contains(x):
		c.fail(path, "out_of_bounds", "%s is outside %s", schema.FormatNumber(val), b)
	case !b.Contains(x):
		c.fail(path, "multiple_of", "%s is not a multiple of %s", schema.FormatNumber(val), schema.FormatNumber(*b.MultipleOf))
	}
}

func (c *checker) text(path, s string, l schema.Length, re *regexp.Regexp) {
	n := utf8.RuneCountInString(s)

	if l.MinLength != nil && n < *l.MinLength {
		c.fail(path, "too_short", "length %d is below %d", n, *l.MinLength)
	}

	if l.MaxLength != nil && n > *l.MaxLength {
		c.fail(path, "too_long", "length %d is above %d", n, *l.MaxLength)
	}

	if re != nil && !re.MatchString(s) {
		c.fail(path, "pattern", "%q does not match %s", s, re)
	}
}

func (c *checker) sequence(path string, raw any) ([]any, bool) {
	v, err := schema.TypeList.Coerce(raw)
	if err != nil {
		c.fail(path, "type", "%v", err)
		return nil, false
	}

	return v.([]any), true
}

func (c *checker) items(path string, raw any, itemType schema.Type) any {
	seq, ok := c.sequence(path, raw)
	if !ok || itemType == "" || itemType == schema.TypeAny {
		return seq
	}

	out := make([]any, len(seq))

	for i, it := range seq {
		v, err := itemType.Coerce(it)
		if err != nil {
			c.fail(index(path, i), "type", "%v", err)
			continue
		}

		out[i] = v
	}

	return out
}

func (c *checker) pair(path string, raw any, rf *schema.RangeFormat) any {
	seq, ok := c.sequence(path, raw)
	if !ok {
		return nil
	}

	if len(seq) != 2 {
		c.fail(path, "structure", "a range has 2 items, got %d", len(seq))
		return nil
	}

	out := make([]any, 2)
	bounds := rf.ItemBounds()

	for i, it := range seq {
		v, err := rf.ItemType.Coerce(it)
		if err != nil {
			c.fail(index(path, i), "type", "%v", err)
			return nil
		}

		if !bounds.IsZero() {
			c.number(index(path, i), v, bounds)
		}

		out[i] = v
	}

	lo, _ := common.AsFloat(out[0])
	hi, _ := common.AsFloat(out[1])

	if rf.EnforceMinLEMax && lo > hi {
		c.fail(path, "range_order", "start %s is greater than end %s",
			schema.FormatNumber(out[0]), schema.FormatNumber(out[1]))
	}

	return out
}

func (c *checker) ranges(path string, raw any, mr *schema.MultipleRangesFormat) any {
	seq, ok := c.sequence(path, raw)
	if !ok {
		return nil
	}

	rf := mr.Range()
	out := make([]any, len(seq))
	before := len(c.errs)

	for i, it := range seq {
		out[i] = c.pair(index(path, i), it, rf)
	}

	if len(c.errs) > before || mr.AllowOverlappingRanges {
		return out
	}

	for i := range out {
		for j := i + 1; j < len(out); j++ {
			a, b := out[i].([]any), out[j].([]any)
			if overlaps(a, b) {
				c.fail(path, "range_overlap", "ranges %d and %d overlap", i, j)
			}
		}
	}

	return out
}

func overlaps(a, b []any) bool {
	a0, _ := common.AsFloat(a[0])
	a1, _ := common.AsFloat(a[1])
	b0, _ := common.AsFloat(b[0])
	b1, _ := common.AsFloat(b[1])

	return a0 <= b1 && b0 <= a1
}

func (c *checker) selections(path string, raw any, mc *schema.MultipleChoiceFormat) any {
	seq, ok := c.sequence(path, raw)
	if !ok {
		return nil
	}

	seen := make(map[string]bool, len(seq))

	for i, it := range seq {
		if !isOption(it, mc.Options, mc.CaseSensitive) {
			c.fail(index(path, i), "not_an_option", "%v is not one of %v", it, mc.Options)
		}

		key := fmt.Sprint(it)
		if !mc.CaseSensitive {
			key = match.Fold(key)
		}

		if seen[key] && !mc.AllowDuplicates {
			c.fail(index(path, i), "duplicate", "%v is selected more than once", it)
		}

		seen[key] = true
	}

	c.count(path, "selection_count", "selections", len(seq), mc.MinSelections, mc.MaxSelections)

	return seq
}

func (c *checker) list(path string, raw any, lc *schema.ListConversionFormat) any {
	seq, ok := c.sequence(path, raw)
	if !ok {
		return nil
	}

	out := make([]any, len(seq))
	bounds := lc.ItemBounds()
	seen := make(map[string]bool, len(seq))

	for i, it := range seq {
		at := index(path, i)

		v, err := lc.ItemType.Coerce(it)
		if err != nil {
			c.fail(at, "type", "%v", err)
			continue
		}

		if !bounds.IsZero() {
			c.number(at, v, bounds)
		}

		if s, isStr := v.(string); isStr {
			c.text(at, s, lc.ItemLength(), lc.ItemRegexp())
		}

		if len(lc.ItemOptions) > 0 && !isOption(v, lc.ItemOptions, true) {
			c.fail(at, "not_an_option", "%v is not one of %v", v, lc.ItemOptions)
		}

		key := fmt.Sprint(v)
		if seen[key] && !lc.AllowDuplicates {
			c.fail(at, "duplicate", "%v appears more than once", v)
		}

		seen[key] = true
		out[i] = v
	}

	c.count(path, "item_count", "items", len(seq), lc.MinItems, lc.MaxItems)

	return out
}

func (c *checker) count(path, code, what string, n int, lo, hi *int) {
	if lo != nil && n < *lo {
		c.fail(path, code, "%d %s, need at least %d", n, what, *lo)
	}

	if hi != nil && n > *hi {
		c.fail(path, code, "%d %s, allowed at most %d", n, what, *hi)
	}
}

func (c *checker) datetime(f *schema.FieldSpec, raw any, df *schema.DatetimeFormat) any {
	path := f.Path()

	var t time.Time

	switch x := raw.(type) {
	case time.Time:
		t = x
	case string:
		parsed, ok := df.Parse(x)
		if !ok {
			c.fail(path, "type", "%q does not match %v", x, df.Formats)
			return nil
		}

		t = parsed
	default:
		c.fail(path, "type", "%v is not a datetime", raw)
		return nil
	}

	lo, hi := df.Bounds()

	if lo != nil && t.Before(*lo) {
		c.fail(path, "out_of_bounds", "%s is before %s", t.Format(time.RFC3339), lo.Format(time.RFC3339))
	}

	if hi != nil && t.After(*hi) {
		c.fail(path, "out_of_bounds", "%s is after %s", t.Format(time.RFC3339), hi.Format(time.RFC3339))
	}

	if f.Type == schema.TypeString {
		if s, ok := raw.(string); ok {
			return s
		}

		return t.Format(df.Layouts()[0])
	}

	return t
}

func (c *checker) path(path, p string, pf *schema.PathFormat) {
	if len(pf.AllowedExtensions) > 0 {
		ext := filepath.Ext(p)

		allowed := false
		for _, e := range pf.AllowedExtensions {
			if strings.EqualFold(e, ext) {
				allowed = true
				break
			}
		}

		if !allowed {
			c.fail(path, "extension", "%q does not end in one of %v", p, pf.AllowedExtensions)
		}
	}

	info, err := os.Stat(p)
	if err != nil {
		if pf.MustExist {
			c.fail(path, "not_found", "%q does not exist", p)
		}

		return
	}

	switch {
	case pf.PathType == schema.PathFile && info.IsDir():
		c.fail(path, "path_type", "%q is a directory", p)
	case pf.PathType == schema.PathDir && !info.IsDir():
		c.fail(path, "path_type", "%q is not a directory", p)
	}
}

func (c *checker) rule(f *schema.FieldSpec, val any) bool {
	program, ok := c.v.rules[f.Path()]
	if !ok {
		return true
	}

	passed, err := evalRule(program, val)
	if err != nil {
		c.fail(f.Path(), "rule", "rule %q: %v", f.Rule, err)
		return false
	}

	if !passed {
		c.fail(f.Path(), "rule", "value does not satisfy %q", f.Rule)
	}

	return passed
}

func isOption(v any, options []any, caseSensitive bool) bool {
	if common.IndexOf(options, v) >= 0 {
		return true
	}

	s, ok := v.(string)
	if !ok || caseSensitive {
		return false
	}

	for _, o := range options {
		if opt, isStr := o.(string); isStr && match.EqualFold(opt, s) {
			return true
		}
	}

	return false
}

func join(scope, name string) string {
	if scope == "" {
		return name
	}

	return scope + "." + name
}

func index(path string, i int) string {
	return path + "." + strconv.Itoa(i)
}

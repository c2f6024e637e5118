package schema

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"dynconf/internal/common"
	"dynconf/internal/policy"
	"dynconf/internal/tree"
)

// FieldSpec describes one declared field. It must not be modified once the
// schema that holds it has been built.
type FieldSpec struct {
	Name string `yaml:"name" json:"name"`
	// Type defaults to the format's implied type, then to TypeAny.
	Type Type `yaml:"type,omitempty" json:"type,omitempty"`
	// ItemType is the element type of TypeList fields without a format.
	ItemType Type `yaml:"item_type,omitempty" json:"item_type,omitempty"`
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Required bool `yaml:"required,omitempty" json:"required,omitempty"`
	// Default is used when the field is absent. Nil means no default.
	Default any    `yaml:"default,omitempty" json:"default,omitempty"`
	Bounds  Bounds `yaml:",inline" json:"bounds"`
	Length  Length `yaml:",inline" json:"length"`
	// Options is the ordered pool of accepted values.
	Options []any  `yaml:"options,omitempty" json:"options,omitempty"`
	Format  Format `yaml:"-" json:"-"`
	// ReadOnly fields reject updates through the configuration API.
	ReadOnly bool             `yaml:"read_only,omitempty" json:"read_only,omitempty"`
	Autofix  policy.Overrides `yaml:"autofix,omitempty" json:"autofix"`
	// Rule is a CEL predicate over "value" checked by the validator.
	Rule        string         `yaml:"rule,omitempty" json:"rule,omitempty"`
	Description string         `yaml:"description,omitempty" json:"description,omitempty"`
	UIHint      string         `yaml:"ui_hint,omitempty" json:"ui_hint,omitempty"`
	UIExtra     map[string]any `yaml:"ui_extra,omitempty" json:"ui_extra,omitempty"`
	// Fields are the children of a TypeRecord field.
	Fields []*FieldSpec `yaml:"fields,omitempty" json:"fields,omitempty"`

	path    string
	pattern *regexp.Regexp
	index   map[string]*FieldSpec
}

// UnmarshalYAML implements yaml.Unmarshaler. It decodes the format union and
// accepts "editable: false" as another spelling of "read_only: true".
func (f *FieldSpec) UnmarshalYAML(node *yaml.Node) error {
	type plain FieldSpec

	var raw struct {
		plain    `yaml:",inline"`
		Format   yaml.Node `yaml:"format"`
		Editable *bool     `yaml:"editable"`
	}

	if err := node.Decode(&raw); err != nil {
		return err
	}

	*f = FieldSpec(raw.plain)

	if raw.Format.Kind != 0 {
		format, err := decodeFormat(&raw.Format)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}

		f.Format = format
	}

	if raw.Editable != nil {
		f.ReadOnly = !*raw.Editable
	}

	return nil
}

// Path returns the dotted path of the field from the schema root.
func (f *FieldSpec) Path() string {
	if f.path == "" {
		return f.Name
	}

	return f.path
}

// Editable reports whether the configuration API may update the field.
func (f *FieldSpec) Editable() bool {
	return !f.ReadOnly
}

// HasDefault reports whether the field declares a default value.
func (f *FieldSpec) HasDefault() bool {
	return f.Default != nil
}

// Regexp returns the length pattern compiled when the schema was built, or nil.
func (f *FieldSpec) Regexp() *regexp.Regexp {
	return f.pattern
}

// Child returns the direct child field of a record.
func (f *FieldSpec) Child(name string) (*FieldSpec, bool) {
	if f.index != nil {
		c, ok := f.index[name]
		return c, ok
	}

	for _, c := range f.Fields {
		if c.Name == name {
			return c, true
		}
	}

	return nil, false
}

// IsNumeric reports whether the implicit numeric fixer applies: a numeric
// declared type or any numeric bound.
func (f *FieldSpec) IsNumeric() bool {
	return f.Type.IsNumeric() || !f.Bounds.IsZero()
}

// clone copies f and its children so later edits by the caller do not leak into a schema.
func (f *FieldSpec) clone() *FieldSpec {
	c := *f
	c.Options = append([]any(nil), f.Options...)
	c.Bounds = f.Bounds.clone()
	c.Length = f.Length.clone()
	c.pattern, c.index = nil, nil

	if f.Format != nil {
		c.Format = f.Format.clone()
	}

	if f.Fields != nil {
		c.Fields = make([]*FieldSpec, len(f.Fields))
		for i, child := range f.Fields {
			c.Fields[i] = child.clone()
		}
	}

	return &c
}

// compile validates f, fills in derived values and records problems on b.
func (f *FieldSpec) compile(parent string, b *builder) {
	f.path = f.Name
	if parent != "" {
		f.path = parent + "." + f.Name
	}

	if f.Name == "" {
		b.fail("missing_name", "field has no name", parent)
		return
	}

	if strings.Contains(f.Name, ".") {
		b.fail("invalid_name", fmt.Sprintf("field name %q must not contain '.'", f.Name), f.path)
	}

	if f.Type == "" {
		f.Type = TypeAny
		if f.Format != nil {
			f.Type = f.Format.impliedType()
		} else if len(f.Fields) > 0 {
			f.Type = TypeRecord
		}
	}

	if !f.Type.IsValid() {
		b.fail("unknown_type", fmt.Sprintf("unknown type %q", f.Type), f.path)
	}

	if f.Type == TypeList && f.ItemType == "" {
		f.ItemType = TypeAny
	}

	if f.ItemType != "" && !f.ItemType.IsScalar() {
		b.fail("unknown_type", fmt.Sprintf("item_type %q is not a scalar type", f.ItemType), f.path)
	}

	f.Default = tree.Normalize(f.Default)
	f.Options = normalizeList(f.Options)

	if err := f.Autofix.Validate(); err != nil {
		b.fail("invalid_policy", err.Error(), f.path)
	}

	f.compileConstraints(b)
	f.compileFormat(b)

	if f.Type == TypeRecord {
		f.compileChildren(b)
	} else if len(f.Fields) > 0 {
		b.fail("unexpected_fields", fmt.Sprintf("only record fields have children, %q is %s", f.Name, f.Type), f.path)
	}

	if f.HasDefault() && len(f.Options) > 0 && common.IndexOf(f.Options, f.Default) < 0 &&
		(f.Format == nil || f.Format.Kind() == FormatSingleChoice) {
		b.warn("default_not_option", fmt.Sprintf("default %v is not one of the options", f.Default), f.path)
	}
}

func (f *FieldSpec) compileConstraints(b *builder) {
	if !f.Bounds.IsZero() && f.Type != TypeAny && !f.Type.IsNumeric() {
		b.fail("bounds_on_non_numeric", fmt.Sprintf("numeric bounds on %s field", f.Type), f.path)
	}

	if err := checkBounds(f.Bounds); err != nil {
		b.fail("bounds_conflict", err.Error(), f.path)
	}

	re, err := checkLength(f.Length)
	if err != nil {
		b.fail("length_conflict", err.Error(), f.path)
	}

	f.pattern = re
}

func (f *FieldSpec) compileFormat(b *builder) {
	if f.Format == nil {
		return
	}

	if err := f.Format.compile(f); err != nil {
		b.fail("invalid_format", err.Error(), f.path)
	}

	if !formatFitsType(f.Format.Kind(), f.Type) {
		b.fail("format_type_mismatch",
			fmt.Sprintf("format %s does not fit type %s", f.Format.Kind(), f.Type), f.path)
	}
}

func (f *FieldSpec) compileChildren(b *builder) {
	if len(f.Fields) == 0 {
		b.warn("empty_record", "record declares no fields", f.path)
	}

	f.index = make(map[string]*FieldSpec, len(f.Fields))

	for _, c := range f.Fields {
		if c == nil {
			b.fail("missing_name", "null field entry", f.path)
			continue
		}

		if _, dup := f.index[c.Name]; dup {
			b.fail("duplicate_field", fmt.Sprintf("field %q declared twice", c.Name), f.path)
			continue
		}

		f.index[c.Name] = c
		c.compile(f.path, b)
	}
}

func formatFitsType(k FormatKind, t Type) bool {
	if t == TypeAny {
		return true
	}

	switch k {
	case FormatRange:
		return t == TypeRange
	case FormatMultipleChoice, FormatListConversion, FormatMultipleRanges:
		return t == TypeList
	case FormatBoolean:
		return t == TypeBool
	case FormatDatetime:
		return t == TypeDatetime || t == TypeString
	case FormatPath:
		return t == TypePath || t == TypeString
	case FormatSingleChoice:
		return t != TypeList && t != TypeRecord && t != TypeRange
	default:
		return false
	}
}

func normalizeList(vs []any) []any {
	if vs == nil {
		return nil
	}

	out, _ := tree.Normalize(vs).([]any)

	return out
}


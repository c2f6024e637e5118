package schema

import (
	"errors"
	"fmt"
	"strings"

	"dynconf/internal/diagnostic"
	"dynconf/internal/policy"
	"dynconf/internal/tree"
)

// Definition is the declarative form of a schema, as written in schema files.
type Definition struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Extra defaults to ExtraIgnore.
	Extra Extra `yaml:"extra,omitempty" json:"extra,omitempty"`
	// Autofix defaults to policy.DefaultSettings().
	Autofix *policy.Settings `yaml:"autofix,omitempty" json:"autofix,omitempty"`
	Fields  []*FieldSpec     `yaml:"fields" json:"fields"`
}

// Schema is an immutable, validated set of field specs.
type Schema struct {
	name        string
	description string
	extra       Extra
	settings    policy.Settings
	root        *FieldSpec
}

type builder struct {
	schema string
	diags  diagnostic.Diagnostics
}

func (b *builder) fail(code, msg, path string) {
	b.diags.AddError(code, msg, b.schema, path)
}

func (b *builder) warn(code, msg, path string) {
	b.diags.AddWarning(code, msg, b.schema, path)
}

// Build validates def and returns the schema with every problem found.
// The schema is nil when the diagnostics hold errors. Fields are copied,
// so def may be reused afterwards.
func Build(def Definition) (*Schema, diagnostic.Diagnostics) {
	b := &builder{schema: def.Name}

	s := &Schema{
		name:        def.Name,
		description: def.Description,
		extra:       def.Extra,
		settings:    policy.DefaultSettings(),
	}

	if s.extra == "" {
		s.extra = ExtraIgnore
	}

	if !s.extra.IsValid() {
		b.fail("invalid_extra", fmt.Sprintf("unknown extra policy %q", s.extra), "")
	}

	if def.Autofix != nil {
		s.settings = *def.Autofix
	}

	if err := s.settings.Validate(); err != nil {
		b.fail("invalid_policy", err.Error(), "")
	}

	if len(def.Fields) == 0 {
		b.fail("no_fields", "schema declares no fields", "")
	}

	fields := make([]*FieldSpec, 0, len(def.Fields))
	for _, f := range def.Fields {
		if f != nil {
			fields = append(fields, f.clone())
		}
	}

	s.root = &FieldSpec{Type: TypeRecord, Fields: fields}
	s.root.compileChildren(b)

	if b.diags.HasErrors() {
		return nil, b.diags
	}

	return s, b.diags
}

// New is Build for callers that only care about errors.
func New(def Definition) (*Schema, error) {
	s, diags := Build(def)
	if err := diags.Error(); err != nil {
		return nil, fmt.Errorf("invalid schema %q: %w", def.Name, err)
	}

	return s, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Description returns the schema description.
func (s *Schema) Description() string { return s.description }

// Extra returns what the validator does with undeclared keys.
func (s *Schema) Extra() Extra { return s.extra }

// Settings returns the global auto-fix settings.
func (s *Schema) Settings() policy.Settings { return s.settings }

// Fields returns the top-level fields in declaration order.
func (s *Schema) Fields() []*FieldSpec {
	return append([]*FieldSpec(nil), s.root.Fields...)
}

// WithSettings returns a copy of s that uses settings for auto-fix.
func (s *Schema) WithSettings(settings policy.Settings) (*Schema, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := *s
	c.settings = settings

	return &c, nil
}

// Lookup returns the field at a dotted path. Numeric segments after a list
// field address its items and resolve to the list field itself.
func (s *Schema) Lookup(path string) (*FieldSpec, bool) {
	p, err := tree.ParsePath(path)
	if err != nil {
		return nil, false
	}

	cur := s.root

	for _, seg := range p {
		if cur.Type == TypeList && seg.Index >= 0 {
			continue
		}

		if cur.Type != TypeRecord {
			return nil, false
		}

		next, ok := cur.Child(seg.Name)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return cur, cur != s.root
}

// FieldNames lists the leaf fields under scope as dotted paths relative to
// scope. An empty scope lists the whole schema. Scope must name a record.
func (s *Schema) FieldNames(scope string) ([]string, error) {
	start := s.root

	if scope != "" {
		f, ok := s.Lookup(scope)
		if !ok {
			return nil, fmt.Errorf("unknown scope %q", scope)
		}

		if f.Type != TypeRecord {
			return nil, fmt.Errorf("scope %q is a %s field, not a record", scope, f.Type)
		}

		start = f
	}

	var names []string

	var walk func(f *FieldSpec, prefix string)

	walk = func(f *FieldSpec, prefix string) {
		for _, c := range f.Fields {
			name := c.Name
			if prefix != "" {
				name = prefix + "." + c.Name
			}

			if c.Type == TypeRecord {
				walk(c, name)
				continue
			}

			names = append(names, name)
		}
	}

	walk(start, "")

	return names, nil
}

// Defaults returns the tree of default values. Records are always present;
// leaves without a default are omitted unless nullable.
func (s *Schema) Defaults() map[string]any {
	return defaults(s.root)
}

func defaults(rec *FieldSpec) map[string]any {
	out := make(map[string]any, len(rec.Fields))

	for _, f := range rec.Fields {
		switch {
		case f.Type == TypeRecord && !f.HasDefault():
			out[f.Name] = defaults(f)
		case f.HasDefault():
			out[f.Name] = f.Default
		case f.Nullable:
			out[f.Name] = nil
		}
	}

	return out
}

// Suggest returns declared names that look like misspellings of name, for
// unknown-key diagnostics. scope is the parent record path.
func (s *Schema) Suggest(scope, name string) []string {
	rec := s.root
	if scope != "" {
		f, ok := s.Lookup(scope)
		if !ok {
			return nil
		}

		rec = f
	}

	known := make([]string, 0, len(rec.Fields))
	for _, f := range rec.Fields {
		known = append(known, f.Name)
	}

	return suggest(name, known)
}

// Walk calls fn for every field, parents before children.
func (s *Schema) Walk(fn func(f *FieldSpec)) {
	var walk func(fs []*FieldSpec)

	walk = func(fs []*FieldSpec) {
		for _, f := range fs {
			fn(f)
			walk(f.Fields)
		}
	}

	walk(s.root.Fields)
}

// ErrUnknownField is returned for paths the schema does not declare.
var ErrUnknownField = errors.New("unknown field")

// Field is Lookup returning an error that names the nearest declared field.
func (s *Schema) Field(path string) (*FieldSpec, error) {
	if f, ok := s.Lookup(path); ok {
		return f, nil
	}

	parent, name := "", path
	if i := strings.LastIndex(path, "."); i >= 0 {
		parent, name = path[:i], path[i+1:]
	}

	if hints := s.Suggest(parent, name); len(hints) > 0 {
		return nil, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownField, path, joinPath(parent, hints[0]))
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownField, path)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}

	return parent + "." + name
}

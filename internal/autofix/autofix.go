package autofix

import (
	"fmt"
	"log/slog"

	"dynconf/internal/common"
	"dynconf/internal/diagnostic"
	"dynconf/internal/fixer"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// Options configure a fix pass.
type Options struct {
	// Current is the active tree. A field's current value binds v and x in
	// numeric expressions.
	Current map[string]any
	// Logger receives per-field decisions at debug level. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns options for a pass without an active tree.
func DefaultOptions() Options {
	return Options{}
}

// FieldReport records what happened to one declared field.
type FieldReport struct {
	Path     string
	Family   fixer.Family
	Original any
	Outcome  fixer.Outcome
}

// Result is the output of a fix pass.
type Result struct {
	// Fixed has the same keys as the input at every level.
	Fixed map[string]any
	// Fields lists the declared fields found in the input, parents before children.
	Fields      []FieldReport
	Diagnostics diagnostic.Diagnostics
}

// Changed returns the reports whose values were modified.
func (r *Result) Changed() []FieldReport {
	return common.Filter(r.Fields, func(f FieldReport) bool { return f.Outcome.Kind == fixer.Modified })
}

// Report returns the report for a dotted field path.
func (r *Result) Report(path string) (FieldReport, bool) {
	for _, f := range r.Fields {
		if f.Path == path {
			return f, true
		}
	}

	return FieldReport{}, false
}

type pass struct {
	schema *schema.Schema
	opts   Options
	logger *slog.Logger
	result *Result
}

// Run fixes input against s. s is read once; a schema swapped in by another
// goroutine during the pass does not affect it.
func Run(s *schema.Schema, input map[string]any, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &pass{
		schema: s,
		opts:   opts,
		logger: logger.With("schema", s.Name()),
		result: &Result{},
	}

	p.result.Fixed = p.record(input, s.Fields(), "")

	logger.Debug("autofix pass complete",
		"schema", s.Name(),
		"fields", len(p.result.Fields),
		"changed", len(p.result.Changed()),
		"warnings", len(p.result.Diagnostics.Warnings))

	return p.result
}

func (p *pass) record(input map[string]any, fields []*schema.FieldSpec, scope string) map[string]any {
	out := make(map[string]any, len(input))
	declared := make(map[string]bool, len(fields))

	for _, f := range fields {
		declared[f.Name] = true

		raw, present := input[f.Name]
		if !present {
			continue
		}

		out[f.Name] = p.field(raw, f)
	}

	for _, k := range tree.SortedKeys(input) {
		if declared[k] {
			continue
		}

		out[k] = input[k]
		p.unknown(scope, k)
	}

	return out
}

func (p *pass) field(raw any, f *schema.FieldSpec) any {
	if f.Type == schema.TypeRecord {
		if nested, ok := raw.(map[string]any); ok {
			p.result.Fields = append(p.result.Fields, FieldReport{
				Path:     f.Path(),
				Family:   fixer.FamilyNone,
				Original: raw,
				Outcome:  fixer.Outcome{Kind: fixer.Unmodified, Value: raw},
			})

			return p.record(nested, f.Fields, f.Path())
		}
	}

	family, why := fixer.Select(f)
	out := fixer.FixField(raw, f, p.schema.Settings(), fixer.Env{Current: p.current(f)})

	p.result.Fields = append(p.result.Fields, FieldReport{
		Path:     f.Path(),
		Family:   family,
		Original: raw,
		Outcome:  out,
	})

	p.logger.Debug("autofix field",
		"field", f.Path(),
		"fixer", family.String(),
		"reason", why,
		"outcome", out.Kind.String())

	name := p.schema.Name()

	switch out.Kind {
	case fixer.Modified:
		p.result.Diagnostics.AddInfo("fixed",
			fmt.Sprintf("%v fixed to %v", raw, out.Value), name, f.Path())
	case fixer.Rejected:
		p.result.Diagnostics.AddWarning("fix_rejected", out.Err.Error(), name, f.Path())
	case fixer.Failed:
		p.result.Diagnostics.AddWarning("fix_failed", out.Err.Error(), name, f.Path())
	}

	if out.Kind.Accepted() {
		return out.Value
	}

	return raw
}

func (p *pass) current(f *schema.FieldSpec) any {
	if p.opts.Current == nil {
		return nil
	}

	v, err := tree.Get(p.opts.Current, f.Path())
	if err != nil {
		return nil
	}

	return v
}

func (p *pass) unknown(scope, key string) {
	path := key
	if scope != "" {
		path = scope + "." + key
	}

	hints := p.schema.Suggest(scope, key)

	msg := fmt.Sprintf("undeclared field %q passed through", path)
	if len(hints) > 0 {
		msg += fmt.Sprintf(" (did you mean %q?)", hints[0])
	}

	p.result.Diagnostics.AddWarning("unknown_field", msg, p.schema.Name(), path, hints...)
}

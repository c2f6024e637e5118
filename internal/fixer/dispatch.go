package fixer

import (
	"fmt"
	"io/fs"
	"os"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// Family names the fixer chosen for a field.
type Family int

const (
	// FamilyNone - the value passes through unmodified.
	FamilyNone Family = iota
	// FamilyNumeric - implicit, chosen by a numeric type or numeric bounds.
	FamilyNumeric
	// FamilyChoice - implicit, chosen by an options pool, or the single_choice format.
	FamilyChoice
	FamilyRange
	FamilyMultipleChoice
	FamilyListConversion
	FamilyBoolean
	FamilyDatetime
	FamilyPath
	FamilyMultipleRanges
)

// String returns a human-readable family name.
func (f Family) String() string {
	switch f {
	case FamilyNone:
		return "none"
	case FamilyNumeric:
		return "numeric"
	case FamilyChoice:
		return "single_choice"
	case FamilyRange:
		return "range"
	case FamilyMultipleChoice:
		return "multiple_choice"
	case FamilyListConversion:
		return "list_conversion"
	case FamilyBoolean:
		return "boolean"
	case FamilyDatetime:
		return "datetime"
	case FamilyPath:
		return "path"
	case FamilyMultipleRanges:
		return "multiple_ranges"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Select returns the fixer family for f and a short explanation of the choice.
func Select(f *schema.FieldSpec) (Family, string) {
	if f.Format != nil {
		switch f.Format.(type) {
		case *schema.RangeFormat:
			return FamilyRange, "range format"
		case *schema.MultipleChoiceFormat:
			return FamilyMultipleChoice, "multiple_choice format"
		case *schema.ListConversionFormat:
			return FamilyListConversion, "list_conversion format"
		case *schema.BooleanFormat:
			return FamilyBoolean, "boolean format"
		case *schema.DatetimeFormat:
			return FamilyDatetime, "datetime format"
		case *schema.PathFormat:
			return FamilyPath, "path format"
		case *schema.MultipleRangesFormat:
			return FamilyMultipleRanges, "multiple_ranges format"
		case *schema.SingleChoiceFormat:
			return FamilyChoice, "single_choice format"
		}
	}

	switch {
	case f.Type == schema.TypeRecord:
		return FamilyNone, "record"
	case len(f.Options) > 0:
		return FamilyChoice, "options"
	case f.IsNumeric():
		return FamilyNumeric, "numeric constraints"
	default:
		return FamilyNone, "no constraints to fix"
	}
}

// Env carries what a fix pass knows beyond the raw input.
type Env struct {
	// Current is the field's active value. A number binds v and x in expressions.
	Current any
	// Stat checks path fields. Nil means os.Stat.
	Stat func(name string) (fs.FileInfo, error)
}

func (e Env) stat(name string) (fs.FileInfo, error) {
	if e.Stat == nil {
		return os.Stat(name)
	}

	return e.Stat(name)
}

// Fix runs the fixer selected for f on original under the effective policy p.
// It never panics: an internal failure becomes a Failed outcome carrying original.
func Fix(original any, f *schema.FieldSpec, p policy.Effective, env Env) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(original, fmt.Errorf("fixer panic: %v", r))
		}
	}()

	if !p.Enabled {
		return bypassed(original)
	}

	if original == nil {
		if f.Nullable {
			return Outcome{Kind: Unmodified}
		}

		return failed(original, coercion("null is not allowed"))
	}

	family, _ := Select(f)

	switch family {
	case FamilyNumeric:
		return fixNumeric(original, f, p, env)
	case FamilyChoice:
		return fixChoice(original, f, p)
	case FamilyRange:
		return fixRange(original, f.Format.(*schema.RangeFormat), p)
	case FamilyMultipleChoice:
		return fixMultipleChoice(original, f.Format.(*schema.MultipleChoiceFormat), p)
	case FamilyListConversion:
		return fixList(original, f.Format.(*schema.ListConversionFormat), p)
	case FamilyBoolean:
		return fixBoolean(original, f.Format.(*schema.BooleanFormat), p)
	case FamilyDatetime:
		return fixDatetime(original, f, f.Format.(*schema.DatetimeFormat), p)
	case FamilyPath:
		return fixPath(original, f.Format.(*schema.PathFormat), p, env)
	case FamilyMultipleRanges:
		return fixMultipleRanges(original, f.Format.(*schema.MultipleRangesFormat), p)
	default:
		return Outcome{Kind: Unmodified, Value: original}
	}
}

// FixField is Fix with the policy resolved from global settings and the
// field's overrides.
func FixField(original any, f *schema.FieldSpec, global policy.Settings, env Env) Outcome {
	return Fix(original, f, policy.Resolve(global, f.Autofix), env)
}

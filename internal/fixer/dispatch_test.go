package fixer

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		field *schema.FieldSpec
		want  Family
	}{
		{"plain string", &schema.FieldSpec{Name: "s", Type: schema.TypeString}, FamilyNone},
		{"int", &schema.FieldSpec{Name: "n", Type: schema.TypeInt}, FamilyNumeric},
		{"bounds only", &schema.FieldSpec{Name: "n", Bounds: schema.Bounds{GE: schema.Float(1)}}, FamilyNumeric},
		{"options", &schema.FieldSpec{Name: "o", Options: []any{"a"}}, FamilyChoice},
		{"options win over numeric", &schema.FieldSpec{Name: "o", Type: schema.TypeInt, Options: []any{1, 2}}, FamilyChoice},
		{"record", &schema.FieldSpec{Name: "r", Type: schema.TypeRecord}, FamilyNone},
		{"range", &schema.FieldSpec{Name: "f", Format: schema.NewRangeFormat()}, FamilyRange},
		{"format wins over options", &schema.FieldSpec{Name: "f", Options: []any{"a"},
			Format: schema.NewMultipleChoiceFormat()}, FamilyMultipleChoice},
		{"list", &schema.FieldSpec{Name: "f", Format: schema.NewListConversionFormat()}, FamilyListConversion},
		{"boolean", &schema.FieldSpec{Name: "f", Format: schema.NewBooleanFormat()}, FamilyBoolean},
		{"datetime", &schema.FieldSpec{Name: "f", Format: schema.NewDatetimeFormat()}, FamilyDatetime},
		{"path", &schema.FieldSpec{Name: "f", Format: schema.NewPathFormat()}, FamilyPath},
		{"multiple ranges", &schema.FieldSpec{Name: "f", Format: schema.NewMultipleRangesFormat()}, FamilyMultipleRanges},
		{"single choice", &schema.FieldSpec{Name: "f", Format: schema.NewSingleChoiceFormat()}, FamilyChoice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, why := Select(tt.field)
			assert.Equal(t, tt.want, got, why)
			assert.NotEmpty(t, why)
		})
	}
}

func TestFix_Null(t *testing.T) {
	nullable := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt, Nullable: true, Bounds: schema.Bounds{GE: schema.Float(1)}})
	required := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt, Bounds: schema.Bounds{GE: schema.Float(1)}})

	out := fix(t, nullable, settings(nil), nil)
	assert.Equal(t, Unmodified, out.Kind)
	assert.Nil(t, out.Value)

	out = fix(t, required, settings(nil), nil)
	assert.Equal(t, Failed, out.Kind)
	assert.Nil(t, out.Value)
	require.ErrorIs(t, out.Err, ErrCoercionFailure)
}

func TestFix_Disabled(t *testing.T) {
	f := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt, Bounds: schema.Bounds{LE: schema.Float(1)}})

	out := fix(t, f, settings(func(s *policy.Settings) { s.Enabled = false }), 50)
	assert.Equal(t, Bypassed, out.Kind)
	assert.Equal(t, 50, out.Value)
}

func TestFix_Passthrough(t *testing.T) {
	f := build(t, &schema.FieldSpec{Name: "s", Type: schema.TypeString})

	out := fix(t, f, settings(nil), 12)
	assert.Equal(t, Unmodified, out.Kind)
	assert.Equal(t, 12, out.Value)
}

func TestFix_RecoversPanics(t *testing.T) {
	broken := &schema.FieldSpec{Name: "span", Format: (*schema.RangeFormat)(nil)}

	out := Fix("1-2", broken, settings(nil), Env{})
	assert.Equal(t, Failed, out.Kind)
	assert.Equal(t, "1-2", out.Value)
	assert.ErrorContains(t, out.Err, "panic")
}

func TestFixField_Overrides(t *testing.T) {
	reject := policy.NumericReject
	f := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt,
		Bounds: schema.Bounds{LE: schema.Float(10)}, Autofix: policy.Overrides{Numeric: &reject}})

	out := FixField(11, f, policy.DefaultSettings(), Env{})
	assert.Equal(t, Rejected, out.Kind)

	g := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt, Bounds: schema.Bounds{LE: schema.Float(10)}})
	out = FixField(11, g, policy.DefaultSettings(), Env{})
	assert.Equal(t, Modified, out.Kind)
	assert.Equal(t, int64(10), out.Value)
}

// Every outcome that is not accepted hands back the caller's value itself.
func TestFix_FallbackKeepsOriginal(t *testing.T) {
	numeric := build(t, &schema.FieldSpec{Name: "n", Type: schema.TypeInt, Bounds: schema.Bounds{GE: schema.Float(0), LE: schema.Float(5)}})
	span := build(t, &schema.FieldSpec{Name: "span", Format: intRange(schema.Float(0), schema.Float(5))})
	mc := schema.NewMultipleChoiceFormat()
	choices := build(t, &schema.FieldSpec{Name: "c", Options: []any{"a", "b"}, Format: mc})

	allReject := settings(func(s *policy.Settings) {
		s.Numeric = policy.NumericReject
		s.Range = policy.RangeReject
		s.MultipleChoice = policy.MultipleChoiceRejectIfAnyInvalid
	})
	allBypass := settings(func(s *policy.Settings) {
		s.Numeric = policy.NumericBypass
		s.Range = policy.RangeBypass
		s.MultipleChoice = policy.MultipleChoiceBypass
	})

	slice := []any{9, 1}
	picks := []any{"a", "z"}

	cases := []struct {
		field *schema.FieldSpec
		input any
	}{
		{numeric, 9},
		{numeric, "nine"},
		{span, slice},
		{span, "1-2-3"},
		{choices, picks},
	}

	for _, p := range []policy.Effective{allReject, allBypass} {
		for _, c := range cases {
			out := fix(t, c.field, p, c.input)
			if out.Kind.Accepted() {
				t.Errorf("%s %v: unexpectedly accepted as %v", c.field.Name, c.input, out.Value)
				continue
			}

			assert.Equal(t, reflect.TypeOf(c.input), reflect.TypeOf(out.Value))
			assert.Equal(t, c.input, out.Value)

			if s, ok := c.input.([]any); ok {
				assert.Same(t, &s[0], &out.Value.([]any)[0], "slice must not be copied")
			}
		}
	}
}

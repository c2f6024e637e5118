package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

func TestFixChoice(t *testing.T) {
	levels := build(t, &schema.FieldSpec{Name: "level", Type: schema.TypeString,
		Options: []any{"DEBUG", "INFO", "WARNING", "ERROR"}})
	tools := build(t, &schema.FieldSpec{Name: "tool", Type: schema.TypeString,
		Options: []any{"flat", "ball", "vbit"}})
	sizes := build(t, &schema.FieldSpec{Name: "size", Type: schema.TypeInt,
		Options: []any{1, 5, 10}})

	nearest := settings(nil)
	reject := settings(func(s *policy.Settings) { s.Options = policy.OptionsReject })
	strict := settings(func(s *policy.Settings) { s.NearestThreshold = 0.9 })

	tests := []struct {
		name  string
		field *schema.FieldSpec
		p     policy.Effective
		input any
		kind  Kind
		want  any
	}{
		{"case folded", levels, nearest, "debug", Modified, "DEBUG"},
		{"typo", tools, nearest, "falt", Modified, "flat"},
		{"exact", tools, nearest, "flat", Unmodified, "flat"},
		{"too far", tools, nearest, "zzzzzz", Rejected, "zzzzzz"},
		{"reject keeps input", tools, reject, "falt", Rejected, "falt"},
		{"reject is case sensitive", levels, reject, "debug", Rejected, "debug"},
		{"threshold", tools, strict, "falt", Rejected, "falt"},
		{"number spelled as string", sizes, reject, "5", Modified, int64(5)},
		{"number member", sizes, reject, 5, Unmodified, int64(5)},
		{"number not member", sizes, nearest, 7, Rejected, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fix(t, tt.field, tt.p, tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

func TestFixChoice_Bypass(t *testing.T) {
	f := build(t, &schema.FieldSpec{Name: "tool", Options: []any{"flat", "ball"}})

	out := fix(t, f, settings(func(s *policy.Settings) { s.Options = policy.OptionsBypass }), "foo")
	assert.Equal(t, Bypassed, out.Kind)
	assert.Equal(t, "foo", out.Value)
}

func TestFixChoice_SingleChoiceFormat(t *testing.T) {
	reject := settings(func(s *policy.Settings) { s.Options = policy.OptionsReject })

	sensitive := build(t, &schema.FieldSpec{Name: "mode", Options: []any{"Low", "High"},
		Format: &schema.SingleChoiceFormat{CaseSensitive: true}})
	out := fix(t, sensitive, reject, "low")
	assert.Equal(t, Rejected, out.Kind)

	caseless := build(t, &schema.FieldSpec{Name: "mode", Options: []any{"Low", "High"},
		Format: schema.NewSingleChoiceFormat()})
	out = fix(t, caseless, reject, "low")
	assert.Equal(t, Modified, out.Kind)
	assert.Equal(t, "Low", out.Value)
}

package fixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

func intRange(lo, hi *float64) *schema.RangeFormat {
	rf := schema.NewRangeFormat()
	rf.ItemType = schema.TypeInt
	rf.MinItemValue = lo
	rf.MaxItemValue = hi

	return rf
}

func rangePolicy(r policy.Range) policy.Effective {
	return settings(func(s *policy.Settings) { s.Range = r })
}

func TestFixRange(t *testing.T) {
	percent := build(t, &schema.FieldSpec{Name: "span", Format: intRange(schema.Float(0), schema.Float(100))})
	small := build(t, &schema.FieldSpec{Name: "span", Format: intRange(schema.Float(0), schema.Float(10))})
	tight := build(t, &schema.FieldSpec{Name: "span", Format: intRange(schema.Float(0), schema.Float(5))})
	open := build(t, &schema.FieldSpec{Name: "span", Format: intRange(nil, nil)})

	single := intRange(nil, nil)
	single.AllowSingleValueAsRange = true
	singles := build(t, &schema.FieldSpec{Name: "span", Format: single})

	tests := []struct {
		name  string
		field *schema.FieldSpec
		pol   policy.Range
		input any
		kind  Kind
		want  any
	}{
		{"clamp pair", percent, policy.RangeClampItems, []any{5, 105}, Modified, []any{int64(5), int64(100)}},
		{"clamp and swap", small, policy.RangeClampItems, "12-3", Modified, []any{int64(3), int64(10)}},
		{"already fixed", small, policy.RangeClampItems, []any{int64(3), int64(10)}, Unmodified, []any{int64(3), int64(10)}},
		{"swap", open, policy.RangeSwapIfReversed, "5-2", Modified, []any{int64(2), int64(5)}},
		{"swap rejects out of bounds", tight, policy.RangeSwapIfReversed, "9-2", Rejected, "9-2"},
		{"reject out of bounds", tight, policy.RangeReject, "12-1", Rejected, "12-1"},
		{"reject reversed", open, policy.RangeReject, "5-2", Rejected, "5-2"},
		{"structure only", tight, policy.RangeRejectIfInvalidStructure, "7-3", Modified, []any{int64(7), int64(3)}},
		{"single value refused", open, policy.RangeRejectIfInvalidStructure, "5", Rejected, "5"},
		{"single value allowed", singles, policy.RangeClampItems, "5", Modified, []any{int64(5), int64(5)}},
		{"single number allowed", singles, policy.RangeClampItems, 5, Modified, []any{int64(5), int64(5)}},
		{"negative start", open, policy.RangeClampItems, "-5-10", Modified, []any{int64(-5), int64(10)}},
		{"negative both", open, policy.RangeClampItems, "-5 - -3", Modified, []any{int64(-5), int64(-3)}},
		{"three items", open, policy.RangeClampItems, []any{1, 2, 3}, Rejected, []any{1, 2, 3}},
		{"three parts", open, policy.RangeClampItems, "5-2-3", Rejected, "5-2-3"},
		{"not numbers", open, policy.RangeClampItems, "a-b", Rejected, "a-b"},
		{"bypass", open, policy.RangeBypass, "5-2-3", Bypassed, "5-2-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fix(t, tt.field, rangePolicy(tt.pol), tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

func TestFixRange_Errors(t *testing.T) {
	open := build(t, &schema.FieldSpec{Name: "span", Format: intRange(nil, nil)})

	out := fix(t, open, rangePolicy(policy.RangeClampItems), []any{1, 2, 3})
	require.ErrorIs(t, out.Err, ErrStructuralMismatch)

	out = fix(t, open, rangePolicy(policy.RangeClampItems), []any{"x", 2})
	require.ErrorIs(t, out.Err, ErrCoercionFailure)

	out = fix(t, open, rangePolicy(policy.RangeReject), "5-2")
	require.ErrorIs(t, out.Err, ErrConstraintViolation)
}

func TestFixRange_FloatItems(t *testing.T) {
	rf := schema.NewRangeFormat()
	rf.InputSeparator = ".."
	rf.MaxItemValue = schema.Float(1)
	f := build(t, &schema.FieldSpec{Name: "band", Format: rf})

	out := fix(t, f, rangePolicy(policy.RangeClampItems), "0.25..1.5")
	assert.Equal(t, Modified, out.Kind)
	assert.Equal(t, []any{0.25, 1.0}, out.Value)
}

func TestFixMultipleRanges(t *testing.T) {
	mr := func(mod func(*schema.MultipleRangesFormat)) *schema.FieldSpec {
		f := schema.NewMultipleRangesFormat()
		f.ItemType = schema.TypeInt
		if mod != nil {
			mod(f)
		}

		return build(t, &schema.FieldSpec{Name: "ranges", Format: f})
	}

	plain := mr(nil)
	ordered := mr(func(f *schema.MultipleRangesFormat) {
		f.SortRanges = true
		f.AllowOverlappingRanges = false
	})
	capped := mr(func(f *schema.MultipleRangesFormat) { f.MaxItemValue = schema.Float(10) })

	pair := func(a, b int64) []any { return []any{a, b} }

	tests := []struct {
		name  string
		field *schema.FieldSpec
		pol   policy.MultipleRanges
		input any
		kind  Kind
		want  any
	}{
		{"parse", plain, policy.MultipleRangesDropInvalid, "1-2;3-4", Modified, []any{pair(1, 2), pair(3, 4)}},
		{"sort", ordered, policy.MultipleRangesReject, "3-4;1-2;5-6", Modified, []any{pair(1, 2), pair(3, 4), pair(5, 6)}},
		{"overlap rejected", ordered, policy.MultipleRangesReject, "1-3;2-4", Rejected, "1-3;2-4"},
		{"overlap dropped", ordered, policy.MultipleRangesDropInvalid, "1-3;2-4;5-6", Modified, []any{pair(1, 3), pair(5, 6)}},
		{"invalid dropped", plain, policy.MultipleRangesDropInvalid, "1-2;bad", Modified, []any{pair(1, 2)}},
		{"invalid rejected", plain, policy.MultipleRangesReject, "1-2;bad", Rejected, "1-2;bad"},
		{"items clamped", capped, policy.MultipleRangesDropInvalid, "8-12", Modified, []any{pair(8, 10)}},
		{"reversed swapped", plain, policy.MultipleRangesDropInvalid, "4-1", Modified, []any{pair(1, 4)}},
		{"list input", plain, policy.MultipleRangesDropInvalid, []any{[]any{1, 2}, "5-6"}, Modified, []any{pair(1, 2), pair(5, 6)}},
		{"bypass", plain, policy.MultipleRangesBypass, "1-2;bad", Bypassed, "1-2;bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := settings(func(s *policy.Settings) { s.MultipleRanges = tt.pol })
			out := fix(t, tt.field, p, tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

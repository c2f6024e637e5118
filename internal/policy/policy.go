package policy

import "strings"

// Numeric governs fields with numeric bounds.
type Numeric string

const (
	// NumericClamp moves out-of-bounds values onto the nearest bound.
	NumericClamp Numeric = "clamp"
	// NumericReject leaves out-of-bounds values for the validator to reject.
	NumericReject Numeric = "reject"
	// NumericBypass skips numeric fixing.
	NumericBypass Numeric = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Numeric) IsValid() bool {
	return p == NumericClamp || p == NumericReject || p == NumericBypass
}

// Options governs fields with an options pool.
type Options string

const (
	// OptionsNearest snaps to the most similar option.
	OptionsNearest Options = "nearest"
	// OptionsReject only accepts exact members.
	OptionsReject Options = "reject"
	// OptionsBypass skips option matching.
	OptionsBypass Options = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Options) IsValid() bool {
	return p == OptionsNearest || p == OptionsReject || p == OptionsBypass
}

// Range governs two-item range values.
type Range string

const (
	// RangeClampItems clamps both items into bounds and swaps a reversed pair.
	RangeClampItems Range = "clamp_items"
	// RangeSwapIfReversed swaps a reversed pair but rejects out-of-bounds items.
	RangeSwapIfReversed Range = "swap_if_reversed"
	// RangeReject rejects out-of-bounds items and reversed pairs.
	RangeReject Range = "reject"
	// RangeRejectIfInvalidStructure only normalizes the shape, leaving the items as parsed.
	RangeRejectIfInvalidStructure Range = "reject_if_invalid_structure"
	// RangeBypass skips range fixing.
	RangeBypass Range = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Range) IsValid() bool {
	switch p {
	case RangeClampItems, RangeSwapIfReversed, RangeReject, RangeRejectIfInvalidStructure, RangeBypass:
		return true
	default:
		return false
	}
}

// MultipleChoice governs multi-select values.
type MultipleChoice string

const (
	// MultipleChoiceRemoveInvalid drops selections that are not options.
	MultipleChoiceRemoveInvalid MultipleChoice = "remove_invalid"
	// MultipleChoiceRejectIfAnyInvalid rejects the value if any selection is not an option.
	MultipleChoiceRejectIfAnyInvalid MultipleChoice = "reject_if_any_invalid"
	// MultipleChoiceRejectIfCountInvalid drops foreign selections, then rejects
	// if the remaining count is outside min/max selections.
	MultipleChoiceRejectIfCountInvalid MultipleChoice = "reject_if_count_invalid"
	// MultipleChoiceBypass skips multi-select fixing.
	MultipleChoiceBypass MultipleChoice = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p MultipleChoice) IsValid() bool {
	switch p {
	case MultipleChoiceRemoveInvalid, MultipleChoiceRejectIfAnyInvalid,
		MultipleChoiceRejectIfCountInvalid, MultipleChoiceBypass:
		return true
	default:
		return false
	}
}

// ListConversion governs delimited lists.
type ListConversion string

const (
	// ListConvertOrReject rejects the list if any element is invalid.
	ListConvertOrReject ListConversion = "convert_or_reject"
	// ListConvertBestEffort drops invalid elements.
	ListConvertBestEffort ListConversion = "convert_best_effort"
	// ListBypass skips list conversion.
	ListBypass ListConversion = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p ListConversion) IsValid() bool {
	return p == ListConvertOrReject || p == ListConvertBestEffort || p == ListBypass
}

// Boolean governs flexible boolean parsing.
type Boolean string

const (
	// BooleanFlexible maps recognized words to true/false; anything else is
	// left to the validator as a failed preprocessing step.
	BooleanFlexible Boolean = "flexible"
	// BooleanRejectIfUnrecognized maps recognized words and rejects anything else.
	BooleanRejectIfUnrecognized Boolean = "reject_if_unrecognized"
	// BooleanBypass skips boolean parsing.
	BooleanBypass Boolean = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Boolean) IsValid() bool {
	return p == BooleanFlexible || p == BooleanRejectIfUnrecognized || p == BooleanBypass
}

// UnmarshalText accepts "strict" as another spelling of reject_if_unrecognized.
func (p *Boolean) UnmarshalText(text []byte) error {
	s := normalize(string(text))
	if s == "strict" {
		s = string(BooleanRejectIfUnrecognized)
	}

	*p = Boolean(s)

	return nil
}

// Datetime governs datetime strings.
type Datetime string

const (
	// DatetimeReject rejects unparsable or out-of-bounds datetimes.
	DatetimeReject Datetime = "reject"
	// DatetimeClampToBounds moves out-of-bounds datetimes onto the nearest bound.
	DatetimeClampToBounds Datetime = "clamp_to_bounds"
	// DatetimeBypass skips datetime parsing.
	DatetimeBypass Datetime = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Datetime) IsValid() bool {
	return p == DatetimeReject || p == DatetimeClampToBounds || p == DatetimeBypass
}

// Path governs filesystem path strings.
type Path string

const (
	// PathNormalize expands, joins and cleans the path, then runs the configured checks.
	PathNormalize Path = "normalize"
	// PathBypass skips path handling.
	PathBypass Path = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p Path) IsValid() bool {
	return p == PathNormalize || p == PathBypass
}

// MultipleRanges governs lists of ranges such as "1-3;7-9".
type MultipleRanges string

const (
	// MultipleRangesDropInvalid drops ranges that cannot be fixed.
	MultipleRangesDropInvalid MultipleRanges = "drop_invalid"
	// MultipleRangesReject rejects the value if any range cannot be fixed.
	MultipleRangesReject MultipleRanges = "reject"
	// MultipleRangesBypass skips multiple-range fixing.
	MultipleRangesBypass MultipleRanges = "bypass"
)

// IsValid returns true if the policy is a recognized value.
func (p MultipleRanges) IsValid() bool {
	return p == MultipleRangesDropInvalid || p == MultipleRangesReject || p == MultipleRangesBypass
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

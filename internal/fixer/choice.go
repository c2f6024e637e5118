package fixer

import (
	"strings"

	"dynconf/internal/common"
	"dynconf/internal/match"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// fixChoice matches a value against the field's options pool.
func fixChoice(original any, f *schema.FieldSpec, p policy.Effective) Outcome {
	if p.Options == policy.OptionsBypass {
		return bypassed(original)
	}

	options, caseSensitive := f.Options, true
	if sc, ok := f.Format.(*schema.SingleChoiceFormat); ok {
		options, caseSensitive = sc.Options, sc.CaseSensitive
	}

	if i := common.IndexOf(options, original); i >= 0 {
		return settle(original, options[i])
	}

	s, isString := original.(string)
	if !isString {
		return rejected(original, violation("%v is not one of %v", original, options))
	}

	// A string that spells an option exactly, like "5" for 5, is a coercion
	// rather than a guess.
	if i := spelledOption(s, options, caseSensitive); i >= 0 {
		return settle(original, options[i])
	}

	if p.Options == policy.OptionsNearest {
		if i, _, ok := match.Closest(s, optionStrings(options), p.NearestThreshold, false); ok {
			return settle(original, options[i])
		}
	}

	return rejected(original, violation("%q is not one of %v", s, options))
}

// spelledOption finds the option whose written form equals s.
func spelledOption(s string, options []any, caseSensitive bool) int {
	s = strings.TrimSpace(s)

	for i, o := range options {
		text := optionString(o)
		if text == s || (!caseSensitive && match.EqualFold(text, s)) {
			return i
		}
	}

	return -1
}

func optionString(o any) string {
	if s, ok := o.(string); ok {
		return s
	}

	return schema.FormatNumber(o)
}

func optionStrings(options []any) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = optionString(o)
	}

	return out
}

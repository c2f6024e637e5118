package fixer

import (
	"fmt"
	"strings"

	"dynconf/internal/common"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// fixMultipleChoice turns "a,b" or [a, b] into a list of options.
func fixMultipleChoice(original any, mc *schema.MultipleChoiceFormat, p policy.Effective) Outcome {
	if p.MultipleChoice == policy.MultipleChoiceBypass {
		return bypassed(original)
	}

	items, err := toItems(original, mc.InputSeparator, true)
	if err != nil {
		return rejected(original, err)
	}

	selected := make([]any, 0, len(items))

	var invalid []any

	for _, it := range items {
		if i := choiceIndex(it, mc.Options, mc.CaseSensitive); i >= 0 {
			selected = append(selected, mc.Options[i])
			continue
		}

		invalid = append(invalid, it)
	}

	if len(invalid) > 0 && p.MultipleChoice == policy.MultipleChoiceRejectIfAnyInvalid {
		return rejected(original, violation("%v are not among the options %v", invalid, mc.Options))
	}

	if !mc.AllowDuplicates {
		selected = common.Dedupe(selected, valueKey)
	}

	if p.MultipleChoice == policy.MultipleChoiceRejectIfCountInvalid {
		if err := checkCount("selections", len(selected), mc.MinSelections, mc.MaxSelections); err != nil {
			return rejected(original, err)
		}
	}

	return settle(original, selected)
}

// choiceIndex finds the option equal to v, comparing strings caselessly
// unless caseSensitive is set.
func choiceIndex(v any, options []any, caseSensitive bool) int {
	if i := common.IndexOf(options, v); i >= 0 {
		return i
	}

	s, ok := v.(string)
	if !ok {
		return -1
	}

	return spelledOption(s, options, caseSensitive)
}

// toItems normalizes a list value: strings are split on sep, sequences are
// taken as they are and a bare scalar becomes a one-item list.
func toItems(v any, sep string, strip bool) ([]any, error) {
	switch x := tree.Normalize(v).(type) {
	case string:
		return splitItems(x, sep, strip), nil
	case []any:
		return x, nil
	case map[string]any:
		return nil, structural("a record is not a list")
	default:
		return []any{x}, nil
	}
}

func splitItems(s, sep string, strip bool) []any {
	if strings.TrimSpace(s) == "" {
		return []any{}
	}

	if sep == "" {
		return []any{s}
	}

	var out []any

	for part := range strings.SplitSeq(s, sep) {
		if strip {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
		}

		out = append(out, part)
	}

	return out
}

func valueKey(v any) string {
	if s, ok := v.(string); ok {
		return "s:" + s
	}

	if n, ok := common.AsFloat(v); ok {
		return "n:" + schema.FormatNumber(n)
	}

	return fmt.Sprintf("%T:%v", v, v)
}

func checkCount(what string, n int, lo, hi *int) error {
	if lo != nil && n < *lo {
		return violation("%d %s, at least %d required", n, what, *lo)
	}

	if hi != nil && n > *hi {
		return violation("%d %s, at most %d allowed", n, what, *hi)
	}

	return nil
}

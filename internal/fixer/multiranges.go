package fixer

import (
	"sort"
	"strings"

	"dynconf/internal/common"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
	"dynconf/internal/tree"
)

// fixMultipleRanges fixes a list of ranges such as "1-3;7-9". Every range goes
// through the range fixer logic under the field's range policy.
func fixMultipleRanges(original any, mr *schema.MultipleRangesFormat, p policy.Effective) Outcome {
	if p.MultipleRanges == policy.MultipleRangesBypass {
		return bypassed(original)
	}

	parts, err := rangeParts(original, mr.ListSeparator)
	if err != nil {
		return rejected(original, err)
	}

	rf := mr.Range()

	// Bypassing the range policy inside a list keeps the structural checks.
	pol := p.Range
	if pol == policy.RangeBypass {
		pol = policy.RangeRejectIfInvalidStructure
	}

	ranges := make([][]any, 0, len(parts))

	for _, part := range parts {
		pair, err := rangeOf(part, rf, pol)
		if err != nil {
			if p.MultipleRanges == policy.MultipleRangesReject {
				return rejected(original, err)
			}

			continue
		}

		ranges = append(ranges, pair)
	}

	if mr.SortRanges {
		sort.SliceStable(ranges, func(i, j int) bool {
			return lessRange(ranges[i], ranges[j])
		})
	}

	if !mr.AllowOverlappingRanges {
		kept := ranges[:0]

		for _, r := range ranges {
			if overlapsAny(r, kept) {
				if p.MultipleRanges == policy.MultipleRangesReject {
					return rejected(original, violation("range %v overlaps another range", r))
				}

				continue
			}

			kept = append(kept, r)
		}

		ranges = kept
	}

	out := make([]any, len(ranges))
	for i, r := range ranges {
		out[i] = r
	}

	return settle(original, out)
}

func rangeParts(v any, sep string) ([]any, error) {
	switch x := tree.Normalize(v).(type) {
	case string:
		var parts []any

		for p := range strings.SplitSeq(x, sep) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}

		return parts, nil
	case []any:
		return x, nil
	default:
		return nil, structural("%T is not a list of ranges", v)
	}
}

func rangeOf(part any, rf *schema.RangeFormat, pol policy.Range) ([]any, error) {
	items, err := rangeItems(part, rf)
	if err != nil {
		return nil, err
	}

	return fixPair(items, rf, pol)
}

func extent(r []any) (float64, float64) {
	a, _ := common.AsFloat(r[0])
	b, _ := common.AsFloat(r[1])

	return min(a, b), max(a, b)
}

func lessRange(x, y []any) bool {
	xl, xh := extent(x)
	yl, yh := extent(y)

	if xl != yl {
		return xl < yl
	}

	return xh < yh
}

func overlapsAny(r []any, others [][]any) bool {
	lo, hi := extent(r)

	for _, o := range others {
		olo, ohi := extent(o)
		if lo <= ohi && olo <= hi {
			return true
		}
	}

	return false
}

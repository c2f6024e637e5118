package fixer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"dynconf/internal/common"
	"dynconf/internal/match"
	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// fixList converts a delimited string (or a list) into a list of typed items.
func fixList(original any, lc *schema.ListConversionFormat, p policy.Effective) Outcome {
	if p.ListConversion == policy.ListBypass {
		return bypassed(original)
	}

	sep := lc.InputSeparator
	if !lc.InputIsString {
		sep = ""
	}

	items, err := toItems(original, sep, lc.StripItems)
	if err != nil {
		return rejected(original, err)
	}

	out := make([]any, 0, len(items))

	var errs []error

	for i, it := range items {
		v, err := listItem(it, lc, p)
		if err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}

		out = append(out, v)
	}

	if len(errs) > 0 && p.ListConversion == policy.ListConvertOrReject {
		return rejected(original, errors.Join(errs...))
	}

	if !lc.AllowDuplicates {
		out = common.Dedupe(out, valueKey)
	}

	if err := checkCount("items", len(out), lc.MinItems, lc.MaxItems); err != nil {
		return rejected(original, err)
	}

	return settle(original, out)
}

// listItem coerces one item and applies the item constraints. Numeric bounds
// and item options follow the numeric and options policies; length and pattern
// are never repaired.
func listItem(it any, lc *schema.ListConversionFormat, p policy.Effective) (any, error) {
	if s, ok := it.(string); ok && lc.StripItems {
		it = strings.TrimSpace(s)
	}

	v, err := lc.ItemType.Coerce(it)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCoercionFailure, err)
	}

	if b := lc.ItemBounds(); !b.IsZero() && p.Numeric != policy.NumericBypass {
		if _, isNum := common.AsFloat(v); isNum {
			fixed, ok := constrain(v, b, p.Numeric == policy.NumericClamp)
			if !ok {
				return nil, violation("%v is outside %s", v, b.String())
			}

			v = fixed
		}
	}

	if len(lc.ItemOptions) > 0 && p.Options != policy.OptionsBypass {
		v, err = itemOption(v, lc.ItemOptions, p)
		if err != nil {
			return nil, err
		}
	}

	if s, ok := v.(string); ok {
		if err := checkLength(s, lc.ItemLength(), lc); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func itemOption(v any, options []any, p policy.Effective) (any, error) {
	if i := choiceIndex(v, options, true); i >= 0 {
		return options[i], nil
	}

	if s, ok := v.(string); ok && p.Options == policy.OptionsNearest {
		if i, _, ok := match.Closest(s, optionStrings(options), p.NearestThreshold, false); ok {
			return options[i], nil
		}
	}

	return nil, violation("%v is not one of %v", v, options)
}

func checkLength(s string, l schema.Length, lc *schema.ListConversionFormat) error {
	n := utf8.RuneCountInString(s)

	if l.MinLength != nil && n < *l.MinLength {
		return violation("%q is shorter than %d", s, *l.MinLength)
	}

	if l.MaxLength != nil && n > *l.MaxLength {
		return violation("%q is longer than %d", s, *l.MaxLength)
	}

	if re := lc.ItemRegexp(); re != nil && !re.MatchString(s) {
		return violation("%q does not match %s", s, re)
	}

	return nil
}

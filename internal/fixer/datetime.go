package fixer

import (
	"time"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// fixDatetime parses a datetime string and applies min/max bounds. String
// fields get the value back in the first configured layout.
func fixDatetime(original any, f *schema.FieldSpec, df *schema.DatetimeFormat, p policy.Effective) Outcome {
	if p.Datetime == policy.DatetimeBypass {
		return bypassed(original)
	}

	var t time.Time

	switch v := original.(type) {
	case time.Time:
		t = v
	case string:
		parsed, ok := df.Parse(v)
		if !ok {
			return rejected(original, coercion("%q matches none of the formats %v", v, df.Formats))
		}

		t = parsed
	default:
		return rejected(original, coercion("%T is not a datetime", original))
	}

	lo, hi := df.Bounds()

	switch {
	case lo != nil && t.Before(*lo):
		if p.Datetime != policy.DatetimeClampToBounds {
			return rejected(original, violation("%s is before %s", t.Format(time.RFC3339), lo.Format(time.RFC3339)))
		}

		t = *lo
	case hi != nil && t.After(*hi):
		if p.Datetime != policy.DatetimeClampToBounds {
			return rejected(original, violation("%s is after %s", t.Format(time.RFC3339), hi.Format(time.RFC3339)))
		}

		t = *hi
	}

	if f.Type == schema.TypeString {
		return settle(original, t.Format(df.Layouts()[0]))
	}

	return settle(original, t)
}

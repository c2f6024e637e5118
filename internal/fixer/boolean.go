package fixer

import (
	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

func fixBoolean(original any, bf *schema.BooleanFormat, p policy.Effective) Outcome {
	if p.Boolean == policy.BooleanBypass {
		return bypassed(original)
	}

	if b, ok := bf.Recognize(original); ok {
		return settle(original, b)
	}

	if p.Boolean == policy.BooleanRejectIfUnrecognized {
		return rejected(original, violation("%v is not a recognized boolean", original))
	}

	return failed(original, coercion("%v is not a recognized boolean", original))
}

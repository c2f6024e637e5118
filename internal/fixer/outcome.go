package fixer

import (
	"errors"
	"fmt"
	"reflect"

	"dynconf/internal/common"
	"dynconf/internal/tree"
)

// Kind classifies an Outcome.
type Kind int

const (
	// Unmodified - the value already satisfied the field (possibly after normalization).
	Unmodified Kind = iota
	// Modified - the value was repaired or coerced.
	Modified
	// Bypassed - the active policy skips this fixer.
	Bypassed
	// Rejected - the value is invalid and the policy does not allow a repair.
	Rejected
	// Failed - the value could not be processed at all.
	Failed
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Unmodified:
		return "unmodified"
	case Modified:
		return "modified"
	case Bypassed:
		return "bypassed"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return common.UnknownStr
	}
}

// Accepted reports whether outcomes of this kind carry a fixed value.
func (k Kind) Accepted() bool {
	return k == Modified || k == Unmodified
}

// Errors wrapped by Outcome.Err.
var (
	// ErrStructuralMismatch - the input has the wrong shape, e.g. a range with three items.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrCoercionFailure - the input cannot be converted to the declared type.
	ErrCoercionFailure = errors.New("coercion failure")
	// ErrConstraintViolation - the value breaks a constraint the policy may not repair.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrEvaluationRejected - an arithmetic expression could not be evaluated.
	ErrEvaluationRejected = errors.New("evaluation rejected")
)

// Outcome is the result of one fixer invocation.
type Outcome struct {
	Kind Kind
	// Value is the fixed value for accepted kinds and the original input otherwise.
	Value any
	// Err explains Rejected and Failed outcomes.
	Err error
}

func (o Outcome) String() string {
	if o.Err != nil {
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	}

	return fmt.Sprintf("%s: %v", o.Kind, o.Value)
}

func bypassed(original any) Outcome {
	return Outcome{Kind: Bypassed, Value: original}
}

func rejected(original any, err error) Outcome {
	return Outcome{Kind: Rejected, Value: original, Err: err}
}

func failed(original any, err error) Outcome {
	return Outcome{Kind: Failed, Value: original, Err: err}
}

// settle reports fixed as Unmodified when it is the normalized form of original.
func settle(original, fixed any) Outcome {
	if reflect.DeepEqual(tree.Normalize(original), fixed) {
		return Outcome{Kind: Unmodified, Value: fixed}
	}

	return Outcome{Kind: Modified, Value: fixed}
}

func structural(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructuralMismatch, fmt.Sprintf(format, args...))
}

func coercion(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCoercionFailure, fmt.Sprintf(format, args...))
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstraintViolation, fmt.Sprintf(format, args...))
}

package validate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid matches every *Error with errors.Is.
var ErrInvalid = errors.New("invalid configuration")

// FieldError is one constraint a value failed.
type FieldError struct {
	Path    string
	Code    string
	Message string
}

// String returns a formatted field error.
func (e FieldError) String() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("%s: [%s] %s", e.Path, e.Code, e.Message)
}

// Error lists every field error of one validation.
type Error struct {
	Schema string
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}

	return fmt.Sprintf("%s %q: %s", ErrInvalid, e.Schema, strings.Join(parts, "; "))
}

// Is reports whether target is ErrInvalid.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// For returns the errors reported for path.
func (e *Error) For(path string) []FieldError {
	var out []FieldError

	for _, f := range e.Fields {
		if f.Path == path {
			out = append(out, f)
		}
	}

	return out
}

// Codes returns the error codes in report order.
func (e *Error) Codes() []string {
	out := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		out[i] = f.Code
	}

	return out
}

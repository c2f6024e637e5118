package expr

import (
	"errors"
	"fmt"
)

// ErrNoResult is wrapped by every error this package returns. Callers treat it
// exactly like "evaluation was not attempted".
var ErrNoResult = errors.New("expression has no result")

// Error describes why an expression was rejected. Pos is the byte offset of the
// offending token, or -1 for failures found during evaluation.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	if e.Pos < 0 {
		return e.Msg
	}

	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// Unwrap lets errors.Is(err, ErrNoResult) match.
func (e *Error) Unwrap() error {
	return ErrNoResult
}

func errorf(pos int, format string, args ...any) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

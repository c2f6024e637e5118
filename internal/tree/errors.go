package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by every NotFoundError.
	ErrNotFound = errors.New("path not found")
	// ErrIncompatible is returned by Set when a value cannot be stored in a typed slot.
	ErrIncompatible = errors.New("incompatible value")
)

// NotFoundError reports the segment at which a path stopped resolving.
type NotFoundError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("path %q not found at segment %q: %s", e.Path, e.Segment, e.Reason)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(p Path, i int, reason string) error {
	return &NotFoundError{Path: p.String(), Segment: p[i].Name, Reason: reason}
}

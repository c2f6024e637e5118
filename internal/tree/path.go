package tree

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Segment is one dot-separated part of a path. Index is the parsed sequence
// index, or -1 when the segment is not a non-negative integer.
type Segment struct {
	Name  string
	Index int
}

// Path is a parsed dotted path.
type Path []Segment

// ParsePath parses a dotted path. Empty paths and empty segments are errors;
// there is no escaping, so a key containing "." cannot be addressed.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	var p Path

	for part := range strings.SplitSeq(path, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}

		p = append(p, Segment{Name: part, Index: parseIndex(part)})
	}

	return p, nil
}

// MustParsePath is ParsePath for paths known to be valid. It panics on error.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

// String joins the segments back into dotted form.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.Name
	}

	return strings.Join(parts, ".")
}

// Child returns a new path with name appended.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)

	return append(out, Segment{Name: name, Index: parseIndex(name)})
}

func parseIndex(s string) int {
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}

	return n
}

package schema

import (
	"math"
	"strconv"
	"strings"
)

// Type is the declared type of a field.
type Type string

const (
	TypeAny      Type = "any"
	TypeString   Type = "string"
	TypeInt      Type = "int"
	TypeFloat    Type = "float"
	TypeBool     Type = "bool"
	TypeDatetime Type = "datetime"
	TypePath     Type = "path"
	TypeList     Type = "list"
	TypeRange    Type = "range"
	TypeRecord   Type = "record"
)

// IsValid returns true if the type is a recognized value.
func (t Type) IsValid() bool {
	switch t {
	case TypeAny, TypeString, TypeInt, TypeFloat, TypeBool,
		TypeDatetime, TypePath, TypeList, TypeRange, TypeRecord:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether values of t are numbers.
func (t Type) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// IsScalar reports whether t can be an item type of lists and ranges.
func (t Type) IsScalar() bool {
	switch t {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeDatetime, TypePath, TypeAny:
		return true
	default:
		return false
	}
}

// Extra decides what the validator does with input keys the schema does not declare.
type Extra string

const (
	// ExtraIgnore drops undeclared keys.
	ExtraIgnore Extra = "ignore"
	// ExtraAllow keeps undeclared keys as they are.
	ExtraAllow Extra = "allow"
	// ExtraForbid fails validation on undeclared keys.
	ExtraForbid Extra = "forbid"
)

// IsValid returns true if the value is recognized.
func (e Extra) IsValid() bool {
	return e == ExtraIgnore || e == ExtraAllow || e == ExtraForbid
}

// Bounds are the numeric constraints of a field. Nil means unconstrained.
type Bounds struct {
	GE         *float64 `yaml:"ge,omitempty" json:"ge,omitempty"`
	GT         *float64 `yaml:"gt,omitempty" json:"gt,omitempty"`
	LE         *float64 `yaml:"le,omitempty" json:"le,omitempty"`
	LT         *float64 `yaml:"lt,omitempty" json:"lt,omitempty"`
	MultipleOf *float64 `yaml:"multiple_of,omitempty" json:"multiple_of,omitempty"`
}

// IsZero reports whether no bound is set.
func (b Bounds) IsZero() bool {
	return b.GE == nil && b.GT == nil && b.LE == nil && b.LT == nil && b.MultipleOf == nil
}

// Lower returns the lower bound and whether it is exclusive. GE wins over GT
// when both are set and GE is the tighter one.
func (b Bounds) Lower() (value float64, exclusive, ok bool) {
	switch {
	case b.GE != nil && b.GT != nil:
		if *b.GT >= *b.GE {
			return *b.GT, true, true
		}

		return *b.GE, false, true
	case b.GE != nil:
		return *b.GE, false, true
	case b.GT != nil:
		return *b.GT, true, true
	default:
		return 0, false, false
	}
}

// Upper returns the upper bound and whether it is exclusive.
func (b Bounds) Upper() (value float64, exclusive, ok bool) {
	switch {
	case b.LE != nil && b.LT != nil:
		if *b.LT <= *b.LE {
			return *b.LT, true, true
		}

		return *b.LE, false, true
	case b.LE != nil:
		return *b.LE, false, true
	case b.LT != nil:
		return *b.LT, true, true
	default:
		return 0, false, false
	}
}

// Contains reports whether v satisfies every bound, including multiple_of.
func (b Bounds) Contains(v float64) bool {
	if lo, excl, ok := b.Lower(); ok && (v < lo || (excl && v == lo)) {
		return false
	}

	if hi, excl, ok := b.Upper(); ok && (v > hi || (excl && v == hi)) {
		return false
	}

	return b.MultipleOf == nil || IsMultiple(v, *b.MultipleOf)
}

// String renders b in interval notation, e.g. "[0, 10) multiple_of 5".
func (b Bounds) String() string {
	var sb strings.Builder

	if lo, excl, ok := b.Lower(); ok {
		if excl {
			sb.WriteString("(")
		} else {
			sb.WriteString("[")
		}

		sb.WriteString(strconv.FormatFloat(lo, 'g', -1, 64))
	} else {
		sb.WriteString("(-inf")
	}

	sb.WriteString(", ")

	if hi, excl, ok := b.Upper(); ok {
		sb.WriteString(strconv.FormatFloat(hi, 'g', -1, 64))

		if excl {
			sb.WriteString(")")
		} else {
			sb.WriteString("]")
		}
	} else {
		sb.WriteString("+inf)")
	}

	if b.MultipleOf != nil {
		sb.WriteString(" multiple_of ")
		sb.WriteString(strconv.FormatFloat(*b.MultipleOf, 'g', -1, 64))
	}

	return sb.String()
}

// IsMultiple reports whether v is a multiple of m within floating point tolerance.
func IsMultiple(v, m float64) bool {
	if m == 0 {
		return true
	}

	q := v / m

	return math.Abs(q-math.Round(q)) <= 1e-9*math.Max(1, math.Abs(q))
}

// Length are the string length and pattern constraints of a field.
type Length struct {
	MinLength *int   `yaml:"min_length,omitempty" json:"min_length,omitempty"`
	MaxLength *int   `yaml:"max_length,omitempty" json:"max_length,omitempty"`
	Pattern   string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// IsZero reports whether no constraint is set.
func (l Length) IsZero() bool {
	return l.MinLength == nil && l.MaxLength == nil && l.Pattern == ""
}

func (b Bounds) clone() Bounds {
	return Bounds{
		GE:         cloneFloat(b.GE),
		GT:         cloneFloat(b.GT),
		LE:         cloneFloat(b.LE),
		LT:         cloneFloat(b.LT),
		MultipleOf: cloneFloat(b.MultipleOf),
	}
}

func (l Length) clone() Length {
	return Length{MinLength: cloneInt(l.MinLength), MaxLength: cloneInt(l.MaxLength), Pattern: l.Pattern}
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}

	return Float(*p)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}

	return Int(*p)
}

// Float returns a pointer to v, for building Bounds in code.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v, for building Length and selection counts in code.
func Int(v int) *int {
	return &v
}

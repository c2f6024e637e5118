package schema

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"dynconf/internal/match"
)

// FormatKind names a format variant.
type FormatKind string

const (
	FormatRange          FormatKind = "range"
	FormatMultipleChoice FormatKind = "multiple_choice"
	FormatListConversion FormatKind = "list_conversion"
	FormatBoolean        FormatKind = "boolean"
	FormatDatetime       FormatKind = "datetime"
	FormatPath           FormatKind = "path"
	FormatMultipleRanges FormatKind = "multiple_ranges"
	FormatSingleChoice   FormatKind = "single_choice"
)

// Format is the advanced shape of a field's value. The set of variants is closed:
// *RangeFormat, *MultipleChoiceFormat, *ListConversionFormat, *BooleanFormat,
// *DatetimeFormat, *PathFormat, *MultipleRangesFormat and *SingleChoiceFormat.
type Format interface {
	Kind() FormatKind
	// impliedType is the field type used when the field declares none.
	impliedType() Type
	// compile validates the format against its field and caches derived values.
	compile(f *FieldSpec) error
	// clone returns a deep copy without compiled state.
	clone() Format
}

// RangeFormat is a pair of numbers, written "3-7", [3, 7] or, optionally, 5.
type RangeFormat struct {
	ItemType                Type     `yaml:"item_type" json:"item_type"`
	MinItemValue            *float64 `yaml:"min_item_value,omitempty" json:"min_item_value,omitempty"`
	MaxItemValue            *float64 `yaml:"max_item_value,omitempty" json:"max_item_value,omitempty"`
	ItemMultipleOf          *float64 `yaml:"item_multiple_of,omitempty" json:"item_multiple_of,omitempty"`
	AllowSingleValueAsRange bool     `yaml:"allow_single_value_as_range" json:"allow_single_value_as_range"`
	EnforceMinLEMax         bool     `yaml:"enforce_min_le_max" json:"enforce_min_le_max"`
	InputSeparator          string   `yaml:"input_separator" json:"input_separator"`
}

// NewRangeFormat returns a RangeFormat with default settings.
func NewRangeFormat() *RangeFormat {
	return &RangeFormat{ItemType: TypeFloat, EnforceMinLEMax: true, InputSeparator: "-"}
}

func (r *RangeFormat) Kind() FormatKind  { return FormatRange }
func (r *RangeFormat) impliedType() Type { return TypeRange }

// ItemBounds returns the bounds every item must satisfy.
func (r *RangeFormat) ItemBounds() Bounds {
	return Bounds{GE: r.MinItemValue, LE: r.MaxItemValue, MultipleOf: r.ItemMultipleOf}
}

func (r *RangeFormat) clone() Format {
	c := *r
	c.MinItemValue = cloneFloat(r.MinItemValue)
	c.MaxItemValue = cloneFloat(r.MaxItemValue)
	c.ItemMultipleOf = cloneFloat(r.ItemMultipleOf)

	return &c
}

func (r *RangeFormat) compile(*FieldSpec) error {
	if r.ItemType == "" {
		r.ItemType = TypeFloat
	}

	if !r.ItemType.IsNumeric() {
		return fmt.Errorf("range item_type must be int or float, got %q", r.ItemType)
	}

	return checkBounds(r.ItemBounds())
}

// MultipleChoiceFormat is a set of selections drawn from Options.
type MultipleChoiceFormat struct {
	// Options defaults to the field's options.
	Options         []any  `yaml:"options,omitempty" json:"options,omitempty"`
	MinSelections   *int   `yaml:"min_selections,omitempty" json:"min_selections,omitempty"`
	MaxSelections   *int   `yaml:"max_selections,omitempty" json:"max_selections,omitempty"`
	AllowDuplicates bool   `yaml:"allow_duplicates" json:"allow_duplicates"`
	InputSeparator  string `yaml:"input_separator" json:"input_separator"`
	CaseSensitive   bool   `yaml:"case_sensitive" json:"case_sensitive"`
}

// NewMultipleChoiceFormat returns a MultipleChoiceFormat with default settings.
func NewMultipleChoiceFormat() *MultipleChoiceFormat {
	return &MultipleChoiceFormat{InputSeparator: ",", CaseSensitive: true}
}

func (m *MultipleChoiceFormat) Kind() FormatKind  { return FormatMultipleChoice }
func (m *MultipleChoiceFormat) impliedType() Type { return TypeList }

func (m *MultipleChoiceFormat) clone() Format {
	c := *m
	c.Options = slices.Clone(m.Options)
	c.MinSelections = cloneInt(m.MinSelections)
	c.MaxSelections = cloneInt(m.MaxSelections)

	return &c
}

func (m *MultipleChoiceFormat) compile(f *FieldSpec) error {
	if len(m.Options) == 0 {
		m.Options = f.Options
	}

	m.Options = normalizeList(m.Options)

	if len(m.Options) == 0 {
		return errors.New("multiple_choice needs options")
	}

	return checkCounts("selections", m.MinSelections, m.MaxSelections)
}

// ListConversionFormat is a delimited string converted into a typed list.
type ListConversionFormat struct {
	InputIsString   bool     `yaml:"input_is_string" json:"input_is_string"`
	InputSeparator  string   `yaml:"input_separator" json:"input_separator"`
	ItemType        Type     `yaml:"item_type" json:"item_type"`
	StripItems      bool     `yaml:"strip_items" json:"strip_items"`
	ItemGE          *float64 `yaml:"item_ge,omitempty" json:"item_ge,omitempty"`
	ItemGT          *float64 `yaml:"item_gt,omitempty" json:"item_gt,omitempty"`
	ItemLE          *float64 `yaml:"item_le,omitempty" json:"item_le,omitempty"`
	ItemLT          *float64 `yaml:"item_lt,omitempty" json:"item_lt,omitempty"`
	ItemMultipleOf  *float64 `yaml:"item_multiple_of,omitempty" json:"item_multiple_of,omitempty"`
	ItemMinLength   *int     `yaml:"item_min_length,omitempty" json:"item_min_length,omitempty"`
	ItemMaxLength   *int     `yaml:"item_max_length,omitempty" json:"item_max_length,omitempty"`
	ItemPattern     string   `yaml:"item_pattern,omitempty" json:"item_pattern,omitempty"`
	ItemOptions     []any    `yaml:"item_options,omitempty" json:"item_options,omitempty"`
	MinItems        *int     `yaml:"min_items,omitempty" json:"min_items,omitempty"`
	MaxItems        *int     `yaml:"max_items,omitempty" json:"max_items,omitempty"`
	AllowDuplicates bool     `yaml:"allow_duplicates" json:"allow_duplicates"`

	pattern *regexp.Regexp
}

// NewListConversionFormat returns a ListConversionFormat with default settings.
func NewListConversionFormat() *ListConversionFormat {
	return &ListConversionFormat{
		InputIsString:   true,
		InputSeparator:  ",",
		ItemType:        TypeString,
		StripItems:      true,
		AllowDuplicates: true,
	}
}

func (l *ListConversionFormat) Kind() FormatKind  { return FormatListConversion }
func (l *ListConversionFormat) impliedType() Type { return TypeList }

// ItemBounds returns the numeric bounds every item must satisfy.
func (l *ListConversionFormat) ItemBounds() Bounds {
	return Bounds{GE: l.ItemGE, GT: l.ItemGT, LE: l.ItemLE, LT: l.ItemLT, MultipleOf: l.ItemMultipleOf}
}

// ItemLength returns the length constraints every string item must satisfy.
func (l *ListConversionFormat) ItemLength() Length {
	return Length{MinLength: l.ItemMinLength, MaxLength: l.ItemMaxLength, Pattern: l.ItemPattern}
}

// ItemRegexp returns the item pattern compiled when the schema was built, or nil.
func (l *ListConversionFormat) ItemRegexp() *regexp.Regexp {
	return l.pattern
}

func (l *ListConversionFormat) clone() Format {
	c := *l
	c.ItemGE = cloneFloat(l.ItemGE)
	c.ItemGT = cloneFloat(l.ItemGT)
	c.ItemLE = cloneFloat(l.ItemLE)
	c.ItemLT = cloneFloat(l.ItemLT)
	c.ItemMultipleOf = cloneFloat(l.ItemMultipleOf)
	c.ItemMinLength = cloneInt(l.ItemMinLength)
	c.ItemMaxLength = cloneInt(l.ItemMaxLength)
	c.ItemOptions = slices.Clone(l.ItemOptions)
	c.MinItems = cloneInt(l.MinItems)
	c.MaxItems = cloneInt(l.MaxItems)
	c.pattern = nil

	return &c
}

func (l *ListConversionFormat) compile(*FieldSpec) error {
	if l.ItemType == "" {
		l.ItemType = TypeString
	}

	if !l.ItemType.IsScalar() {
		return fmt.Errorf("list_conversion item_type must be a scalar type, got %q", l.ItemType)
	}

	if l.InputIsString && l.InputSeparator == "" {
		return errors.New("list_conversion needs an input_separator")
	}

	l.ItemOptions = normalizeList(l.ItemOptions)

	var errs []error

	if err := checkBounds(l.ItemBounds()); err != nil {
		errs = append(errs, err)
	}

	re, err := checkLength(l.ItemLength())
	if err != nil {
		errs = append(errs, err)
	}

	l.pattern = re

	if err := checkCounts("items", l.MinItems, l.MaxItems); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// BooleanFormat maps words such as "yes" and "off" onto booleans.
type BooleanFormat struct {
	TrueValues  []string `yaml:"true_values" json:"true_values"`
	FalseValues []string `yaml:"false_values" json:"false_values"`
}

// NewBooleanFormat returns a BooleanFormat with the default word lists.
func NewBooleanFormat() *BooleanFormat {
	return &BooleanFormat{
		TrueValues:  []string{"true", "yes", "y", "1", "on", "t", "enable", "enabled"},
		FalseValues: []string{"false", "no", "n", "0", "off", "f", "disable", "disabled"},
	}
}

func (b *BooleanFormat) Kind() FormatKind  { return FormatBoolean }
func (b *BooleanFormat) impliedType() Type { return TypeBool }

func (b *BooleanFormat) clone() Format {
	return &BooleanFormat{TrueValues: slices.Clone(b.TrueValues), FalseValues: slices.Clone(b.FalseValues)}
}

func (b *BooleanFormat) compile(*FieldSpec) error {
	seen := make(map[string]bool, len(b.TrueValues))
	for _, v := range b.TrueValues {
		seen[match.Fold(v)] = true
	}

	for _, v := range b.FalseValues {
		if seen[match.Fold(v)] {
			return fmt.Errorf("boolean value %q is both true and false", v)
		}
	}

	return nil
}

// DatetimeFormat parses strings into time.Time.
type DatetimeFormat struct {
	// Formats are Go layouts, strftime patterns ("%Y-%m-%d") or the names
	// listed in LayoutAliases. They are tried in order.
	Formats []string `yaml:"formats" json:"formats"`
	// Timezone is attached to values that carry no zone. Empty means UTC.
	Timezone    string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	MinDatetime string `yaml:"min_datetime,omitempty" json:"min_datetime,omitempty"`
	MaxDatetime string `yaml:"max_datetime,omitempty" json:"max_datetime,omitempty"`

	layouts  []string
	location *time.Location
	min, max *time.Time
}

// NewDatetimeFormat returns a DatetimeFormat that accepts common ISO 8601 forms.
// It is ready to parse without being part of a schema.
func NewDatetimeFormat() *DatetimeFormat {
	d := &DatetimeFormat{Formats: []string{"rfc3339nano", "datetime", "datetime_minutes", "date"}}
	d.layouts = layouts(d.Formats)
	d.location = time.UTC

	return d
}

func (d *DatetimeFormat) Kind() FormatKind  { return FormatDatetime }
func (d *DatetimeFormat) impliedType() Type { return TypeDatetime }

// Layouts returns the Go layouts to try, in order. Formats that were never
// compiled are translated on every call.
func (d *DatetimeFormat) Layouts() []string {
	if d.layouts == nil {
		return layouts(d.Formats)
	}

	return d.layouts
}

// Location returns the zone attached to zoneless values, UTC until compiled.
func (d *DatetimeFormat) Location() *time.Location {
	if d.location == nil {
		return time.UTC
	}

	return d.location
}

func layouts(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, Layout(f))
	}

	return out
}

// Bounds returns the parsed min and max datetimes; either may be nil.
func (d *DatetimeFormat) Bounds() (lo, hi *time.Time) {
	return d.min, d.max
}

// Parse tries every layout in order.
func (d *DatetimeFormat) Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range d.Layouts() {
		if t, err := time.ParseInLocation(layout, s, d.Location()); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func (d *DatetimeFormat) clone() Format {
	return &DatetimeFormat{
		Formats:     slices.Clone(d.Formats),
		Timezone:    d.Timezone,
		MinDatetime: d.MinDatetime,
		MaxDatetime: d.MaxDatetime,
	}
}

func (d *DatetimeFormat) compile(*FieldSpec) error {
	if len(d.Formats) == 0 {
		d.Formats = NewDatetimeFormat().Formats
	}

	d.layouts = layouts(d.Formats)

	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return fmt.Errorf("datetime timezone: %w", err)
	}

	d.location = loc

	parseBound := func(name, s string) (*time.Time, error) {
		if s == "" {
			return nil, nil
		}

		t, ok := d.Parse(s)
		if !ok {
			return nil, fmt.Errorf("datetime %s %q matches none of the formats", name, s)
		}

		return &t, nil
	}

	if d.min, err = parseBound("min_datetime", d.MinDatetime); err != nil {
		return err
	}

	if d.max, err = parseBound("max_datetime", d.MaxDatetime); err != nil {
		return err
	}

	if d.min != nil && d.max != nil && d.min.After(*d.max) {
		return errors.New("datetime min_datetime is after max_datetime")
	}

	return nil
}

// PathType restricts what a path must point to.
type PathType string

const (
	PathAny  PathType = "any"
	PathFile PathType = "file"
	PathDir  PathType = "dir"
)

// IsValid returns true if the value is recognized.
func (p PathType) IsValid() bool {
	return p == PathAny || p == PathFile || p == PathDir
}

// PathFormat normalizes filesystem paths and optionally checks them.
type PathFormat struct {
	ExpandUser        bool     `yaml:"expand_user" json:"expand_user"`
	BaseDir           string   `yaml:"base_dir,omitempty" json:"base_dir,omitempty"`
	Resolve           bool     `yaml:"resolve" json:"resolve"`
	MustExist         bool     `yaml:"must_exist" json:"must_exist"`
	PathType          PathType `yaml:"path_type" json:"path_type"`
	AllowedExtensions []string `yaml:"allowed_extensions,omitempty" json:"allowed_extensions,omitempty"`
}

// NewPathFormat returns a PathFormat with default settings.
func NewPathFormat() *PathFormat {
	return &PathFormat{ExpandUser: true, Resolve: true, PathType: PathAny}
}

func (p *PathFormat) Kind() FormatKind  { return FormatPath }
func (p *PathFormat) impliedType() Type { return TypePath }

func (p *PathFormat) clone() Format {
	c := *p
	c.AllowedExtensions = slices.Clone(p.AllowedExtensions)

	return &c
}

func (p *PathFormat) compile(*FieldSpec) error {
	if p.PathType == "" {
		p.PathType = PathAny
	}

	if !p.PathType.IsValid() {
		return fmt.Errorf("unknown path_type %q", p.PathType)
	}

	for i, ext := range p.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") {
			p.AllowedExtensions[i] = "." + ext
		}
	}

	return nil
}

// MultipleRangesFormat is a list of ranges such as "1-3;7-9".
type MultipleRangesFormat struct {
	ListSeparator          string   `yaml:"input_separator_list" json:"input_separator_list"`
	RangeSeparator         string   `yaml:"input_separator_range" json:"input_separator_range"`
	ItemType               Type     `yaml:"item_type" json:"item_type"`
	MinItemValue           *float64 `yaml:"min_item_value,omitempty" json:"min_item_value,omitempty"`
	MaxItemValue           *float64 `yaml:"max_item_value,omitempty" json:"max_item_value,omitempty"`
	ItemMultipleOf         *float64 `yaml:"item_multiple_of,omitempty" json:"item_multiple_of,omitempty"`
	SortRanges             bool     `yaml:"sort_ranges" json:"sort_ranges"`
	AllowOverlappingRanges bool     `yaml:"allow_overlapping_ranges" json:"allow_overlapping_ranges"`
}

// NewMultipleRangesFormat returns a MultipleRangesFormat with default settings.
func NewMultipleRangesFormat() *MultipleRangesFormat {
	return &MultipleRangesFormat{
		ListSeparator:          ";",
		RangeSeparator:         "-",
		ItemType:               TypeFloat,
		AllowOverlappingRanges: true,
	}
}

func (m *MultipleRangesFormat) Kind() FormatKind  { return FormatMultipleRanges }
func (m *MultipleRangesFormat) impliedType() Type { return TypeList }

// Range returns the format each element range follows.
func (m *MultipleRangesFormat) Range() *RangeFormat {
	return &RangeFormat{
		ItemType:        m.ItemType,
		MinItemValue:    m.MinItemValue,
		MaxItemValue:    m.MaxItemValue,
		ItemMultipleOf:  m.ItemMultipleOf,
		EnforceMinLEMax: true,
		InputSeparator:  m.RangeSeparator,
	}
}

func (m *MultipleRangesFormat) clone() Format {
	c := *m
	c.MinItemValue = cloneFloat(m.MinItemValue)
	c.MaxItemValue = cloneFloat(m.MaxItemValue)
	c.ItemMultipleOf = cloneFloat(m.ItemMultipleOf)

	return &c
}

func (m *MultipleRangesFormat) compile(f *FieldSpec) error {
	if m.ListSeparator == "" || m.RangeSeparator == "" {
		return errors.New("multiple_ranges needs both separators")
	}

	if m.ListSeparator == m.RangeSeparator {
		return errors.New("multiple_ranges separators must differ")
	}

	if m.ItemType == "" {
		m.ItemType = TypeFloat
	}

	return m.Range().compile(f)
}

// SingleChoiceFormat is one value drawn from Options.
type SingleChoiceFormat struct {
	// Options defaults to the field's options.
	Options       []any `yaml:"options,omitempty" json:"options,omitempty"`
	CaseSensitive bool  `yaml:"case_sensitive" json:"case_sensitive"`
}

// NewSingleChoiceFormat returns a SingleChoiceFormat with default settings.
func NewSingleChoiceFormat() *SingleChoiceFormat {
	return &SingleChoiceFormat{}
}

func (s *SingleChoiceFormat) Kind() FormatKind  { return FormatSingleChoice }
func (s *SingleChoiceFormat) impliedType() Type { return TypeAny }

func (s *SingleChoiceFormat) clone() Format {
	return &SingleChoiceFormat{Options: slices.Clone(s.Options), CaseSensitive: s.CaseSensitive}
}

func (s *SingleChoiceFormat) compile(f *FieldSpec) error {
	if len(s.Options) == 0 {
		s.Options = f.Options
	}

	s.Options = normalizeList(s.Options)

	if len(s.Options) == 0 {
		return errors.New("single_choice needs options")
	}

	return nil
}

// newFormat returns the default-valued variant for kind.
func newFormat(kind FormatKind) (Format, error) {
	switch kind {
	case FormatRange:
		return NewRangeFormat(), nil
	case FormatMultipleChoice:
		return NewMultipleChoiceFormat(), nil
	case FormatListConversion:
		return NewListConversionFormat(), nil
	case FormatBoolean:
		return NewBooleanFormat(), nil
	case FormatDatetime:
		return NewDatetimeFormat(), nil
	case FormatPath:
		return NewPathFormat(), nil
	case FormatMultipleRanges:
		return NewMultipleRangesFormat(), nil
	case FormatSingleChoice:
		return NewSingleChoiceFormat(), nil
	default:
		return nil, fmt.Errorf("unknown format type %q", kind)
	}
}

// decodeFormat reads either a bare kind ("format: boolean") or a mapping with a
// "type" key. Keys missing from the mapping keep their defaults.
func decodeFormat(node *yaml.Node) (Format, error) {
	var kind string

	switch node.Kind {
	case yaml.ScalarNode:
		kind = node.Value
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "type" {
				kind = node.Content[i+1].Value
			}
		}
	default:
		return nil, fmt.Errorf("line %d: format must be a string or a mapping", node.Line)
	}

	if kind == "" {
		return nil, fmt.Errorf("line %d: format needs a type", node.Line)
	}

	f, err := newFormat(FormatKind(strings.ToLower(kind)))
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}

	if node.Kind == yaml.MappingNode {
		if err := node.Decode(f); err != nil {
			return nil, fmt.Errorf("line %d: format %s: %w", node.Line, kind, err)
		}
	}

	return f, nil
}

func checkBounds(b Bounds) error {
	lo, loExcl, okLo := b.Lower()
	hi, hiExcl, okHi := b.Upper()

	if okLo && okHi && (lo > hi || (lo == hi && (loExcl || hiExcl))) {
		return fmt.Errorf("lower bound %v is not below upper bound %v", lo, hi)
	}

	if b.MultipleOf != nil && *b.MultipleOf <= 0 {
		return fmt.Errorf("multiple_of must be positive, got %v", *b.MultipleOf)
	}

	return nil
}

func checkLength(l Length) (*regexp.Regexp, error) {
	if l.MinLength != nil && *l.MinLength < 0 {
		return nil, fmt.Errorf("min_length must not be negative, got %d", *l.MinLength)
	}

	if l.MinLength != nil && l.MaxLength != nil && *l.MinLength > *l.MaxLength {
		return nil, fmt.Errorf("min_length %d is greater than max_length %d", *l.MinLength, *l.MaxLength)
	}

	if l.Pattern == "" {
		return nil, nil
	}

	re, err := regexp.Compile(l.Pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	return re, nil
}

func checkCounts(what string, lo, hi *int) error {
	if lo != nil && *lo < 0 {
		return fmt.Errorf("min %s must not be negative", what)
	}

	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("min %s %d is greater than max %s %d", what, *lo, what, *hi)
	}

	return nil
}

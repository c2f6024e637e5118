package policy

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultNearestThreshold is the minimum similarity for OptionsNearest to snap.
const DefaultNearestThreshold = 0.3

// Settings are the global auto-fix choices shared by every field of a schema.
type Settings struct {
	// Enabled turns the whole auto-fix pass on or off.
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`
	// EvalExpressions lets numeric fields accept arithmetic such as "8000+100".
	EvalExpressions bool `yaml:"eval_expressions" json:"eval_expressions" toml:"eval_expressions"`
	// NearestThreshold is the similarity cut-off for OptionsNearest, in [0, 1].
	NearestThreshold float64 `yaml:"nearest_threshold" json:"nearest_threshold" toml:"nearest_threshold"`

	Numeric        Numeric        `yaml:"numeric_policy" json:"numeric_policy" toml:"numeric_policy"`
	Options        Options        `yaml:"options_policy" json:"options_policy" toml:"options_policy"`
	Range          Range          `yaml:"range_policy" json:"range_policy" toml:"range_policy"`
	MultipleChoice MultipleChoice `yaml:"multiple_choice_policy" json:"multiple_choice_policy" toml:"multiple_choice_policy"`
	ListConversion ListConversion `yaml:"list_conversion_policy" json:"list_conversion_policy" toml:"list_conversion_policy"`
	Boolean        Boolean        `yaml:"boolean_policy" json:"boolean_policy" toml:"boolean_policy"`
	Datetime       Datetime       `yaml:"datetime_policy" json:"datetime_policy" toml:"datetime_policy"`
	Path           Path           `yaml:"path_policy" json:"path_policy" toml:"path_policy"`
	MultipleRanges MultipleRanges `yaml:"multiple_ranges_policy" json:"multiple_ranges_policy" toml:"multiple_ranges_policy"`
}

// DefaultSettings returns the settings used when a schema does not configure any.
func DefaultSettings() Settings {
	return Settings{
		Enabled:          true,
		EvalExpressions:  false,
		NearestThreshold: DefaultNearestThreshold,
		Numeric:          NumericClamp,
		Options:          OptionsNearest,
		Range:            RangeClampItems,
		MultipleChoice:   MultipleChoiceRemoveInvalid,
		ListConversion:   ListConvertOrReject,
		Boolean:          BooleanFlexible,
		Datetime:         DatetimeReject,
		Path:             PathNormalize,
		MultipleRanges:   MultipleRangesDropInvalid,
	}
}

// Validate reports every unrecognized policy value.
func (s Settings) Validate() error {
	var errs []error

	check := func(name string, ok bool, v any) {
		if !ok {
			errs = append(errs, fmt.Errorf("unknown %s %q", name, v))
		}
	}

	check("numeric_policy", s.Numeric.IsValid(), s.Numeric)
	check("options_policy", s.Options.IsValid(), s.Options)
	check("range_policy", s.Range.IsValid(), s.Range)
	check("multiple_choice_policy", s.MultipleChoice.IsValid(), s.MultipleChoice)
	check("list_conversion_policy", s.ListConversion.IsValid(), s.ListConversion)
	check("boolean_policy", s.Boolean.IsValid(), s.Boolean)
	check("datetime_policy", s.Datetime.IsValid(), s.Datetime)
	check("path_policy", s.Path.IsValid(), s.Path)
	check("multiple_ranges_policy", s.MultipleRanges.IsValid(), s.MultipleRanges)

	if s.NearestThreshold < 0 || s.NearestThreshold > 1 {
		errs = append(errs, fmt.Errorf("nearest_threshold %v is outside [0, 1]", s.NearestThreshold))
	}

	return errors.Join(errs...)
}

// Overrides are per-field replacements for Settings. Nil fields inherit.
type Overrides struct {
	EvalExpressions  *bool    `yaml:"eval_expressions,omitempty" json:"eval_expressions,omitempty"`
	NearestThreshold *float64 `yaml:"nearest_threshold,omitempty" json:"nearest_threshold,omitempty"`

	Numeric        *Numeric        `yaml:"numeric_policy,omitempty" json:"numeric_policy,omitempty"`
	Options        *Options        `yaml:"options_policy,omitempty" json:"options_policy,omitempty"`
	Range          *Range          `yaml:"range_policy,omitempty" json:"range_policy,omitempty"`
	MultipleChoice *MultipleChoice `yaml:"multiple_choice_policy,omitempty" json:"multiple_choice_policy,omitempty"`
	ListConversion *ListConversion `yaml:"list_conversion_policy,omitempty" json:"list_conversion_policy,omitempty"`
	Boolean        *Boolean        `yaml:"boolean_policy,omitempty" json:"boolean_policy,omitempty"`
	Datetime       *Datetime       `yaml:"datetime_policy,omitempty" json:"datetime_policy,omitempty"`
	Path           *Path           `yaml:"path_policy,omitempty" json:"path_policy,omitempty"`
	MultipleRanges *MultipleRanges `yaml:"multiple_ranges_policy,omitempty" json:"multiple_ranges_policy,omitempty"`
}

// Validate reports every unrecognized override value.
func (o Overrides) Validate() error {
	return Resolve(DefaultSettings(), o).Settings().Validate()
}

// Effective is the policy one field runs with during one fix pass.
type Effective Settings

// Settings converts e back to a Settings value.
func (e Effective) Settings() Settings {
	return Settings(e)
}

// Resolve layers o over global key by key. The result shares nothing with
// either argument.
func Resolve(global Settings, o Overrides) Effective {
	e := Effective(global)

	override(&e.EvalExpressions, o.EvalExpressions)
	override(&e.NearestThreshold, o.NearestThreshold)
	override(&e.Numeric, o.Numeric)
	override(&e.Options, o.Options)
	override(&e.Range, o.Range)
	override(&e.MultipleChoice, o.MultipleChoice)
	override(&e.ListConversion, o.ListConversion)
	override(&e.Boolean, o.Boolean)
	override(&e.Datetime, o.Datetime)
	override(&e.Path, o.Path)
	override(&e.MultipleRanges, o.MultipleRanges)

	return e
}

func override[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// UnmarshalYAML implements yaml.Unmarshaler. Keys missing from the document
// take their DefaultSettings values.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	type plain Settings

	p := plain(DefaultSettings())
	if err := node.Decode(&p); err != nil {
		return err
	}

	*s = Settings(p)

	return nil
}

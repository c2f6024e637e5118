package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dynconf/internal/diagnostic"
)

// BuildFile loads a schema definition from a YAML or JSON file and builds it.
// The returned diagnostics carry the build warnings.
func BuildFile(path string) (*Schema, diagnostic.Diagnostics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("%s: %w", path, err)
	}

	s, diags := Build(*def)
	if err := diags.Error(); err != nil {
		return nil, diags, fmt.Errorf("invalid schema %q: %w", def.Name, err)
	}

	return s, diags, nil
}

// Parse decodes YAML (and therefore JSON) data into a Definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition

	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	applyDefaults(&def)

	return &def, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(def *Definition) {
	if def.Extra == "" {
		def.Extra = ExtraIgnore
	}
}

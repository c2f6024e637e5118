package fixer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

// build compiles f inside a one-field schema and returns the compiled copy.
func build(t *testing.T, f *schema.FieldSpec) *schema.FieldSpec {
	t.Helper()

	s, err := schema.New(schema.Definition{Name: "test", Fields: []*schema.FieldSpec{f}})
	require.NoError(t, err)

	compiled, ok := s.Lookup(f.Name)
	require.True(t, ok)

	return compiled
}

func settings(mod func(s *policy.Settings)) policy.Effective {
	s := policy.DefaultSettings()
	if mod != nil {
		mod(&s)
	}

	return policy.Effective(s)
}

func fix(t *testing.T, f *schema.FieldSpec, p policy.Effective, v any) Outcome {
	t.Helper()
	return Fix(v, f, p, Env{})
}

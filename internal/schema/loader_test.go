package schema

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
)

func examplesDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	return filepath.Join(filepath.Dir(file), "..", "..", "examples", "schemas")
}

func TestParse(t *testing.T) {
	yaml := `
name: svc
autofix:
  numeric_policy: reject
fields:
  - name: port
    type: int
    default: 8080
    ge: 1024
    le: 65535
  - name: level
    options: [DEBUG, INFO]
    editable: false
  - name: span
    format: {type: range, item_type: int, max_item_value: 10}
    autofix: {range_policy: swap_if_reversed}
  - name: flag
    format: boolean
`
	def, err := Parse([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "svc", def.Name)
	assert.Equal(t, ExtraIgnore, def.Extra)
	require.NotNil(t, def.Autofix)
	assert.Equal(t, policy.NumericReject, def.Autofix.Numeric)
	assert.Equal(t, policy.OptionsNearest, def.Autofix.Options, "unset keys keep defaults")
	assert.True(t, def.Autofix.Enabled)

	require.Len(t, def.Fields, 4)

	port := def.Fields[0]
	require.NotNil(t, port.Bounds.GE)
	assert.InDelta(t, 1024, *port.Bounds.GE, 0)
	assert.InDelta(t, 65535, *port.Bounds.LE, 0)

	assert.True(t, def.Fields[1].ReadOnly)

	span, ok := def.Fields[2].Format.(*RangeFormat)
	require.True(t, ok)
	assert.Equal(t, TypeInt, span.ItemType)
	assert.Equal(t, "-", span.InputSeparator, "unset format keys keep defaults")
	assert.True(t, span.EnforceMinLEMax)
	require.NotNil(t, def.Fields[2].Autofix.Range)
	assert.Equal(t, policy.RangeSwapIfReversed, *def.Fields[2].Autofix.Range)

	flag, ok := def.Fields[3].Format.(*BooleanFormat)
	require.True(t, ok)
	assert.Contains(t, flag.TrueValues, "yes")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "fields: [\n"},
		{"unknown format", "fields:\n  - name: x\n    format: {type: spiral}\n"},
		{"format without type", "fields:\n  - name: x\n    format: {item_type: int}\n"},
		{"format as list", "fields:\n  - name: x\n    format: [range]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestBuildFile_Example(t *testing.T) {
	s, _, err := BuildFile(filepath.Join(examplesDir(t), "app.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "app", s.Name())
	assert.True(t, s.Settings().EvalExpressions)

	f, ok := s.Lookup("db.port")
	require.True(t, ok)
	assert.Equal(t, TypeInt, f.Type)
	assert.Equal(t, "db.port", f.Path())
	assert.Equal(t, int64(5432), f.Default)

	f, ok = s.Lookup("db.name")
	require.True(t, ok)
	assert.False(t, f.Editable())

	f, ok = s.Lookup("span")
	require.True(t, ok)
	assert.Equal(t, TypeRange, f.Type, "type implied by format")

	f, ok = s.Lookup("started")
	require.True(t, ok)

	dt := f.Format.(*DatetimeFormat)
	lo, hi := dt.Bounds()
	require.NotNil(t, lo)
	assert.Nil(t, hi)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), *lo)

	parsed, ok := dt.Parse("24/12/2021")
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 12, 24, 0, 0, 0, 0, time.UTC), parsed)
}

func TestBuildFile_Warnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: level
fields:
  - name: level
    type: string
    default: TRACE
    options: [DEBUG, INFO]
`), 0o600))

	s, diags, err := BuildFile(path)
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "default_not_option", diags.Warnings[0].Code)
	assert.Equal(t, "level", diags.Warnings[0].FieldPath)

	require.NoError(t, os.WriteFile(path, []byte("name: empty\nfields: []\n"), 0o600))

	_, diags, err = BuildFile(path)
	require.Error(t, err)
	assert.True(t, diags.HasErrors())
}

func TestBuildFile_Missing(t *testing.T) {
	_, _, err := BuildFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read schema file")
}

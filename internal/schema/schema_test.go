package schema

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
)

func nestedDefinition() Definition {
	return Definition{
		Name: "nested",
		Fields: []*FieldSpec{
			{Name: "port", Type: TypeInt, Default: 8080},
			{Name: "debug", Type: TypeBool, Default: false},
			{Name: "db", Type: TypeRecord, Fields: []*FieldSpec{
				{Name: "host", Type: TypeString, Default: "localhost"},
				{Name: "port", Type: TypeInt, Default: 5432},
			}},
			{Name: "level1", Fields: []*FieldSpec{
				{Name: "level2", Fields: []*FieldSpec{
					{Name: "nested", Fields: []*FieldSpec{
						{Name: "value", Type: TypeString, Default: "deep"},
					}},
				}},
			}},
			{Name: "tags", Type: TypeList, ItemType: TypeString, Default: []any{"a"}},
			{Name: "token", Type: TypeString, Nullable: true},
			{Name: "secret", Type: TypeString},
		},
	}
}

func TestBuild_Lookup(t *testing.T) {
	s, err := New(nestedDefinition())
	require.NoError(t, err)

	tests := []struct {
		path     string
		wantType Type
		found    bool
	}{
		{"port", TypeInt, true},
		{"db", TypeRecord, true},
		{"db.host", TypeString, true},
		{"level1.level2.nested.value", TypeString, true},
		{"level1", TypeRecord, true},
		{"tags", TypeList, true},
		{"tags.0", TypeList, true},
		{"tags.0.x", "", false},
		{"db.user", "", false},
		{"port.x", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			f, ok := s.Lookup(tt.path)
			assert.Equal(t, tt.found, ok)

			if tt.found {
				assert.Equal(t, tt.wantType, f.Type)
			}
		})
	}
}

func TestSchema_FieldNames(t *testing.T) {
	s, err := New(nestedDefinition())
	require.NoError(t, err)

	all, err := s.FieldNames("")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"port", "debug", "db.host", "db.port", "level1.level2.nested.value", "tags", "token", "secret",
	}, all)

	db, err := s.FieldNames("db")
	require.NoError(t, err)
	assert.Equal(t, []string{"host", "port"}, db)

	deep, err := s.FieldNames("level1.level2")
	require.NoError(t, err)
	assert.Equal(t, []string{"nested.value"}, deep)

	_, err = s.FieldNames("nonexistent")
	require.Error(t, err)

	_, err = s.FieldNames("debug")
	require.Error(t, err)

	_, err = s.FieldNames("debug.something")
	require.Error(t, err)
}

func TestSchema_Defaults(t *testing.T) {
	s, err := New(nestedDefinition())
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"port":  int64(8080),
		"debug": false,
		"db":    map[string]any{"host": "localhost", "port": int64(5432)},
		"level1": map[string]any{
			"level2": map[string]any{"nested": map[string]any{"value": "deep"}},
		},
		"tags":  []any{"a"},
		"token": nil,
	}, s.Defaults())
}

func TestBuild_CopiesDefinition(t *testing.T) {
	def := nestedDefinition()

	s, err := New(def)
	require.NoError(t, err)

	def.Fields[0].Name = "changed"

	_, ok := s.Lookup("port")
	assert.True(t, ok)
}

func TestBuild_RebuildFromEditedDefinition(t *testing.T) {
	mc := &MultipleChoiceFormat{InputSeparator: ","}
	paths := &PathFormat{PathType: PathFile, AllowedExtensions: []string{"yaml"}}
	def := Definition{Name: "app", Fields: []*FieldSpec{
		{Name: "features", Options: []any{"a", "b"}, Format: mc},
		{Name: "file", Format: paths},
		{Name: "port", Type: TypeInt, Bounds: Bounds{LE: Float(10)}},
	}}

	first, err := New(def)
	require.NoError(t, err)

	assert.Empty(t, mc.Options, "building must not fill in the caller's format")
	assert.Equal(t, []string{"yaml"}, paths.AllowedExtensions)

	def.Fields[0].Options = []any{"x", "y"}
	*def.Fields[2].Bounds.LE = 20

	second, err := New(def)
	require.NoError(t, err)

	f1, _ := first.Lookup("features")
	f2, _ := second.Lookup("features")
	assert.NotSame(t, f1.Format, f2.Format)
	assert.Equal(t, []any{"a", "b"}, f1.Format.(*MultipleChoiceFormat).Options)
	assert.Equal(t, []any{"x", "y"}, f2.Format.(*MultipleChoiceFormat).Options)

	p1, _ := first.Lookup("file")
	assert.Equal(t, []string{".yaml"}, p1.Format.(*PathFormat).AllowedExtensions)

	n1, _ := first.Lookup("port")
	n2, _ := second.Lookup("port")
	assert.InDelta(t, 10, *n1.Bounds.LE, 0)
	assert.InDelta(t, 20, *n2.Bounds.LE, 0)
}

func TestDatetimeCoerce_Concurrent(t *testing.T) {
	s, err := New(Definition{Name: "dt", Fields: []*FieldSpec{
		{Name: "when", Format: &DatetimeFormat{Formats: []string{"date"}, Timezone: "UTC"}},
		{Name: "code", Type: TypeString, Length: Length{Pattern: "^[a-z]+$"}},
	}})
	require.NoError(t, err)

	f, _ := s.Lookup("when")
	df := f.Format.(*DatetimeFormat)
	code, _ := s.Lookup("code")

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 50 {
				v, err := TypeDatetime.Coerce("2024-01-02")
				assert.NoError(t, err)
				assert.Equal(t, 2024, v.(time.Time).Year())

				_, ok := df.Parse("2024-02-03")
				assert.True(t, ok)
				assert.True(t, code.Regexp().MatchString("abc"))
			}
		}()
	}

	wg.Wait()
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		fields []*FieldSpec
		code   string
	}{
		{"no fields", nil, "no_fields"},
		{"missing name", []*FieldSpec{{Type: TypeInt}}, "missing_name"},
		{"dotted name", []*FieldSpec{{Name: "a.b"}}, "invalid_name"},
		{"unknown type", []*FieldSpec{{Name: "x", Type: "decimal"}}, "unknown_type"},
		{"duplicate", []*FieldSpec{{Name: "x"}, {Name: "x"}}, "duplicate_field"},
		{"bounds conflict", []*FieldSpec{{Name: "x", Type: TypeInt, Bounds: Bounds{GE: Float(10), LE: Float(5)}}}, "bounds_conflict"},
		{"exclusive equal bounds", []*FieldSpec{{Name: "x", Type: TypeFloat, Bounds: Bounds{GT: Float(1), LT: Float(1)}}}, "bounds_conflict"},
		{"zero multiple", []*FieldSpec{{Name: "x", Type: TypeInt, Bounds: Bounds{MultipleOf: Float(0)}}}, "bounds_conflict"},
		{"bounds on string", []*FieldSpec{{Name: "x", Type: TypeString, Bounds: Bounds{GE: Float(1)}}}, "bounds_on_non_numeric"},
		{"bad pattern", []*FieldSpec{{Name: "x", Type: TypeString, Length: Length{Pattern: "("}}}, "length_conflict"},
		{"length conflict", []*FieldSpec{{Name: "x", Type: TypeString, Length: Length{MinLength: Int(5), MaxLength: Int(2)}}}, "length_conflict"},
		{"bad override", []*FieldSpec{{Name: "x", Autofix: policy.Overrides{Numeric: ptr(policy.Numeric("snap"))}}}, "invalid_policy"},
		{"range on int", []*FieldSpec{{Name: "x", Type: TypeInt, Format: NewRangeFormat()}}, "format_type_mismatch"},
		{"range of strings", []*FieldSpec{{Name: "x", Format: &RangeFormat{ItemType: TypeString}}}, "invalid_format"},
		{"choice without options", []*FieldSpec{{Name: "x", Format: NewMultipleChoiceFormat()}}, "invalid_format"},
		{"children on scalar", []*FieldSpec{{Name: "x", Type: TypeInt, Fields: []*FieldSpec{{Name: "y"}}}}, "unexpected_fields"},
		{"bad timezone", []*FieldSpec{{Name: "x", Format: &DatetimeFormat{Timezone: "Mars/Olympus"}}}, "invalid_format"},
		{"bad path type", []*FieldSpec{{Name: "x", Format: &PathFormat{PathType: "socket"}}}, "invalid_format"},
		{"same separators", []*FieldSpec{{Name: "x", Format: &MultipleRangesFormat{ListSeparator: "-", RangeSeparator: "-"}}}, "invalid_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, diags := Build(Definition{Name: "bad", Fields: tt.fields})
			assert.Nil(t, s)
			require.True(t, diags.HasErrors())

			var codes []string
			for _, d := range diags.Errors {
				codes = append(codes, d.Code)
			}

			assert.Contains(t, codes, tt.code)
		})
	}
}

func TestBuild_Warnings(t *testing.T) {
	s, diags := Build(Definition{Name: "w", Fields: []*FieldSpec{
		{Name: "level", Default: "TRACE", Options: []any{"DEBUG", "INFO"}},
	}})
	require.NotNil(t, s)
	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, "default_not_option", diags.Warnings[0].Code)
}

func TestBuild_InvalidSettings(t *testing.T) {
	settings := policy.DefaultSettings()
	settings.Options = "closest"

	_, err := New(Definition{Name: "s", Autofix: &settings, Fields: []*FieldSpec{{Name: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_policy")
}

func TestSchema_Field(t *testing.T) {
	s, err := New(nestedDefinition())
	require.NoError(t, err)

	f, err := s.Field("db.host")
	require.NoError(t, err)
	assert.Equal(t, "host", f.Name)

	_, err = s.Field("db.hostt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Contains(t, err.Error(), `did you mean "db.host"`)

	_, err = s.Field("zzz")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestSchema_WithSettings(t *testing.T) {
	s, err := New(nestedDefinition())
	require.NoError(t, err)

	settings := policy.DefaultSettings()
	settings.Numeric = policy.NumericReject

	s2, err := s.WithSettings(settings)
	require.NoError(t, err)
	assert.Equal(t, policy.NumericReject, s2.Settings().Numeric)
	assert.Equal(t, policy.NumericClamp, s.Settings().Numeric)

	settings.Numeric = "x"
	_, err = s.WithSettings(settings)
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	assert.Equal(t, "2006-01-02", Layout("date"))
	assert.Equal(t, "2006-01-02", Layout("%Y-%m-%d"))
	assert.Equal(t, "02/01/2006 15:04:05.000000", Layout("%d/%m/%Y %H:%M:%S.%f"))
	assert.Equal(t, "100%", Layout("100%%"))
	assert.Equal(t, "Jan 2 2006", Layout("Jan 2 2006"))
}

func ptr[T any](v T) *T {
	return &v
}

package fixer

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynconf/internal/policy"
	"dynconf/internal/schema"
)

func TestFixBoolean(t *testing.T) {
	f := build(t, &schema.FieldSpec{Name: "flag", Format: schema.NewBooleanFormat()})
	custom := build(t, &schema.FieldSpec{Name: "flag",
		Format: &schema.BooleanFormat{TrueValues: []string{"si"}, FalseValues: []string{"no"}}})

	flexible := settings(nil)
	strict := settings(func(s *policy.Settings) { s.Boolean = policy.BooleanRejectIfUnrecognized })
	bypass := settings(func(s *policy.Settings) { s.Boolean = policy.BooleanBypass })

	tests := []struct {
		name  string
		field *schema.FieldSpec
		p     policy.Effective
		input any
		kind  Kind
		want  any
	}{
		{"yes", f, flexible, "YES", Modified, true},
		{"off", f, flexible, " off ", Modified, false},
		{"one", f, flexible, 1, Modified, true},
		{"zero float", f, flexible, 0.0, Modified, false},
		{"bool", f, flexible, true, Unmodified, true},
		{"unrecognized", f, flexible, "maybe", Failed, "maybe"},
		{"strict", f, strict, "maybe", Rejected, "maybe"},
		{"bypass", f, bypass, "maybe", Bypassed, "maybe"},
		{"custom words", custom, flexible, "SI", Modified, true},
		{"custom words only", custom, strict, "yes", Rejected, "yes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fix(t, tt.field, tt.p, tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

func TestFixDatetime(t *testing.T) {
	format := func() *schema.DatetimeFormat {
		return &schema.DatetimeFormat{
			Formats:     []string{"date", "%d/%m/%Y"},
			MinDatetime: "2000-01-01",
			MaxDatetime: "2030-12-31",
		}
	}

	f := build(t, &schema.FieldSpec{Name: "when", Format: format()})
	text := build(t, &schema.FieldSpec{Name: "when", Type: schema.TypeString, Format: format()})

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

	reject := settings(nil)
	clamp := settings(func(s *policy.Settings) { s.Datetime = policy.DatetimeClampToBounds })

	tests := []struct {
		name  string
		field *schema.FieldSpec
		p     policy.Effective
		input any
		kind  Kind
		want  any
	}{
		{"iso date", f, reject, "2024-01-02", Modified, day(2024, 1, 2)},
		{"strftime", f, reject, "02/01/2024", Modified, day(2024, 1, 2)},
		{"time value", f, reject, day(2010, 6, 1), Unmodified, day(2010, 6, 1)},
		{"garbage", f, reject, "yesterday", Rejected, "yesterday"},
		{"number", f, reject, 20240102, Rejected, 20240102},
		{"too early", f, reject, "1990-05-05", Rejected, "1990-05-05"},
		{"clamp early", f, clamp, "1990-05-05", Modified, day(2000, 1, 1)},
		{"clamp late", f, clamp, "2040-01-01", Modified, day(2030, 12, 31)},
		{"string field", text, reject, "02/01/2024", Modified, "2024-01-02"},
		{"string field canonical", text, reject, "2024-01-02", Unmodified, "2024-01-02"},
		{"bypass", f, settings(func(s *policy.Settings) { s.Datetime = policy.DatetimeBypass }), "x", Bypassed, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fix(t, tt.field, tt.p, tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}

	out := fix(t, f, reject, "yesterday")
	require.ErrorIs(t, out.Err, ErrCoercionFailure)

	out = fix(t, f, reject, "1990-05-05")
	require.ErrorIs(t, out.Err, ErrConstraintViolation)
}

func TestFixPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("a: 1\n"), 0o600))

	path := func(mod func(*schema.PathFormat)) *schema.FieldSpec {
		pf := schema.NewPathFormat()
		pf.BaseDir = dir
		mod(pf)

		return build(t, &schema.FieldSpec{Name: "out", Format: pf})
	}

	anyPath := path(func(*schema.PathFormat) {})
	yamlOnly := path(func(pf *schema.PathFormat) { pf.AllowedExtensions = []string{"yaml", ".yml"} })
	existing := path(func(pf *schema.PathFormat) { pf.MustExist = true })
	dirs := path(func(pf *schema.PathFormat) { pf.PathType = schema.PathDir })
	files := path(func(pf *schema.PathFormat) { pf.PathType = schema.PathFile })

	p := settings(nil)

	tests := []struct {
		name  string
		field *schema.FieldSpec
		input any
		kind  Kind
		want  any
	}{
		{"joined with base", anyPath, "cfg.yaml", Modified, file},
		{"absolute", anyPath, file, Unmodified, file},
		{"cleaned", anyPath, dir + "/sub/../cfg.yaml", Modified, file},
		{"missing is fine", anyPath, "new.yaml", Modified, filepath.Join(dir, "new.yaml")},
		{"extension", yamlOnly, "cfg.yaml", Modified, file},
		{"extension case", yamlOnly, "CFG.YML", Modified, filepath.Join(dir, "CFG.YML")},
		{"bad extension", yamlOnly, "notes.txt", Rejected, "notes.txt"},
		{"must exist", existing, "cfg.yaml", Modified, file},
		{"does not exist", existing, "missing.yaml", Rejected, "missing.yaml"},
		{"file is not dir", dirs, "cfg.yaml", Rejected, "cfg.yaml"},
		{"dir", dirs, ".", Modified, dir},
		{"dir is not file", files, ".", Rejected, "."},
		{"not a string", anyPath, 42, Failed, 42},
		{"blank", anyPath, "  ", Failed, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := fix(t, tt.field, p, tt.input)
			assert.Equal(t, tt.kind, out.Kind, out.String())
			assert.Equal(t, tt.want, out.Value)
		})
	}
}

type fakeInfo struct {
	fs.FileInfo
	dir bool
}

func (f fakeInfo) IsDir() bool { return f.dir }

func TestFixPath_Stat(t *testing.T) {
	var calls []string

	env := Env{Stat: func(name string) (fs.FileInfo, error) {
		calls = append(calls, name)

		switch filepath.Base(name) {
		case "data":
			return fakeInfo{dir: true}, nil
		case "app.yaml":
			return fakeInfo{}, nil
		default:
			return nil, fs.ErrNotExist
		}
	}}

	path := func(mod func(*schema.PathFormat)) *schema.FieldSpec {
		pf := schema.NewPathFormat()
		pf.BaseDir = "/srv"
		mod(pf)

		return build(t, &schema.FieldSpec{Name: "out", Format: pf})
	}

	anyPath := path(func(*schema.PathFormat) {})
	existing := path(func(pf *schema.PathFormat) { pf.MustExist = true })
	dirs := path(func(pf *schema.PathFormat) { pf.PathType = schema.PathDir })

	out := Fix("ghost.yaml", anyPath, settings(nil), env)
	assert.Equal(t, Modified, out.Kind)
	assert.Empty(t, calls, "no check configured, nothing to stat")

	out = Fix("app.yaml", existing, settings(nil), env)
	assert.Equal(t, Modified, out.Kind)
	assert.Equal(t, filepath.Join("/srv", "app.yaml"), out.Value)

	out = Fix("ghost.yaml", existing, settings(nil), env)
	assert.Equal(t, Rejected, out.Kind)
	require.ErrorIs(t, out.Err, ErrConstraintViolation)

	out = Fix("data", dirs, settings(nil), env)
	assert.Equal(t, Modified, out.Kind)

	out = Fix("app.yaml", dirs, settings(nil), env)
	assert.Equal(t, Rejected, out.Kind)

	assert.Equal(t, []string{"/srv/app.yaml", "/srv/ghost.yaml", "/srv/data", "/srv/app.yaml"},
		calls)
}

func TestFixPath_ExpandUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	f := build(t, &schema.FieldSpec{Name: "out", Format: schema.NewPathFormat()})

	out := fix(t, f, settings(nil), "~/data/app.db")
	assert.Equal(t, Modified, out.Kind)
	assert.Equal(t, filepath.Join(home, "data", "app.db"), out.Value)

	raw := schema.NewPathFormat()
	raw.ExpandUser = false
	raw.Resolve = false
	g := build(t, &schema.FieldSpec{Name: "out", Format: raw})

	out = fix(t, g, settings(nil), "~/data/../app.db")
	assert.Equal(t, "~/app.db", out.Value)
}

func TestFixPath_Bypass(t *testing.T) {
	f := build(t, &schema.FieldSpec{Name: "out", Format: schema.NewPathFormat()})

	out := fix(t, f, settings(func(s *policy.Settings) { s.Path = policy.PathBypass }), "rel.txt")
	assert.Equal(t, Bypassed, out.Kind)
	assert.Equal(t, "rel.txt", out.Value)
}

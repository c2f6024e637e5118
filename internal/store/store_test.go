package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() map[string]any {
	return map[string]any{
		"port":    int64(8080),
		"ratio":   0.5,
		"name":    "svc",
		"debug":   true,
		"tags":    []any{"a", "b"},
		"windows": []any{[]any{int64(1), int64(3)}, []any{int64(5), int64(8)}},
		"db":      map[string]any{"host": "localhost", "port": int64(5432)},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML, FormatTOML, FormatMsgPack} {
		t.Run(string(f), func(t *testing.T) {
			data, err := Marshal(f, sampleTree())
			require.NoError(t, err)

			got, err := Unmarshal(f, data)
			require.NoError(t, err)

			assert.Equal(t, sampleTree(), got, spew.Sdump(got))
		})
	}
}

func TestMarshal_JSONIndent(t *testing.T) {
	data, err := Marshal(FormatJSON, map[string]any{"db": map[string]any{"host": "<local>"}})
	require.NoError(t, err)

	assert.Equal(t, "{\n    \"db\": {\n        \"host\": \"<local>\"\n    }\n}\n", string(data))
}

func TestMarshal_Nulls(t *testing.T) {
	in := map[string]any{"token": nil, "db": map[string]any{"password": nil, "host": "h"}}

	data, err := Marshal(FormatTOML, in)
	require.NoError(t, err)

	got, err := Unmarshal(FormatTOML, data)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"db": map[string]any{"host": "h"}}, got)

	for _, f := range []Format{FormatJSON, FormatYAML, FormatMsgPack} {
		data, err := Marshal(f, in)
		require.NoError(t, err)

		got, err := Unmarshal(f, data)
		require.NoError(t, err)
		assert.Equal(t, in, got, string(f))
	}
}

func TestUnmarshal(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
		want   map[string]any
	}{
		{"empty json", FormatJSON, "  \n", map[string]any{}},
		{"empty yaml", FormatYAML, "", map[string]any{}},
		{"yaml null document", FormatYAML, "~\n", map[string]any{}},
		{"large json int", FormatJSON, `{"id": 9007199254740993}`, map[string]any{"id": int64(9007199254740993)}},
		{"yaml int keys", FormatYAML, "codes:\n  1: one\n", map[string]any{"codes": map[string]any{"1": "one"}}},
		{"toml table", FormatTOML, "[db]\nport = 5432\n", map[string]any{"db": map[string]any{"port": int64(5432)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal(tt.format, []byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshal_Errors(t *testing.T) {
	_, err := Unmarshal(FormatJSON, []byte(`{"a":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode json")

	_, err = Unmarshal(FormatYAML, []byte("- a\n- b\n"))
	require.Error(t, err)

	_, err = Unmarshal(Format("ini"), []byte("a=1"))
	require.Error(t, err)

	_, err = Marshal(Format("ini"), nil)
	require.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"app.json", FormatJSON},
		{"app.yaml", FormatYAML},
		{"app.YML", FormatYAML},
		{"app.toml", FormatTOML},
		{"app.msgpack", FormatMsgPack},
		{"app.mpk", FormatMsgPack},
		{"app.conf", FormatJSON},
		{"app", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFor(tt.path))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat(".yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = ParseFormat("mpk")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgPack, f)

	_, err = ParseFormat("ini")
	require.Error(t, err)

	assert.Equal(t, ".toml", FormatTOML.Ext())
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"app.json", "nested/app.yaml", "app.toml", "app.mpk"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)

			require.NoError(t, Save(path, sampleTree()))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sampleTree(), got)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-", "temp file left behind")
	}
}

func TestWriteFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")

	require.NoError(t, WriteFile(path, []byte("old"), 0o600))
	require.NoError(t, WriteFile(path, []byte("new"), 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("port = "), 0o600))

	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

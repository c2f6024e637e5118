package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"dynconf/internal/tree"
)

// Marshal encodes t in format f. JSON is indented by four spaces.
func Marshal(f Format, t map[string]any) ([]byte, error) {
	if t == nil {
		t = map[string]any{}
	}

	switch f {
	case FormatJSON:
		var buf bytes.Buffer

		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)

		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}

		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer

		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)

		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}

		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}

		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer

		// TOML has no null.
		if err := toml.NewEncoder(&buf).Encode(withoutNulls(t)); err != nil {
			return nil, fmt.Errorf("failed to encode toml: %w", err)
		}

		return buf.Bytes(), nil
	case FormatMsgPack:
		var buf bytes.Buffer

		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)

		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("failed to encode msgpack: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Unmarshal decodes data in format f into a normalized tree. Empty input
// decodes to an empty tree.
func Unmarshal(f Format, data []byte) (map[string]any, error) {
	out := map[string]any{}

	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var err error

	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&out)
	case FormatYAML:
		err = yaml.Unmarshal(data, &out)
	case FormatTOML:
		_, err = toml.Decode(string(data), &out)
	case FormatMsgPack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.UseLooseInterfaceDecoding(true)
		err = dec.Decode(&out)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f, err)
	}

	if out == nil {
		return map[string]any{}, nil
	}

	return tree.Normalize(out).(map[string]any), nil
}

func withoutNulls(t map[string]any) map[string]any {
	out := make(map[string]any, len(t))

	for k, v := range t {
		switch x := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = withoutNulls(x)
		default:
			out[k] = v
		}
	}

	return out
}

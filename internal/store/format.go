package store

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a file encoding for configuration trees.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgPack Format = "msgpack"
)

// IsValid returns true if the format is recognized.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatMsgPack:
		return true
	default:
		return false
	}
}

// Ext returns the preferred file extension, with the leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatYAML:
		return ".yaml"
	case FormatTOML:
		return ".toml"
	case FormatMsgPack:
		return ".msgpack"
	default:
		return ".json"
	}
}

var extensions = map[string]Format{
	".json":    FormatJSON,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".toml":    FormatTOML,
	".msgpack": FormatMsgPack,
	".mpk":     FormatMsgPack,
}

// FormatFor returns the format for path's extension. Unknown extensions are JSON.
func FormatFor(path string) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}

	return FormatJSON
}

// ParseFormat accepts a format name or an extension such as ".yml".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if f := Format(s); f.IsValid() {
		return f, nil
	}

	if f, ok := extensions["."+strings.TrimPrefix(s, ".")]; ok {
		return f, nil
	}

	return "", fmt.Errorf("unknown format %q", s)
}

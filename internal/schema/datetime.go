package schema

import (
	"strings"
	"time"
)

// LayoutAliases are the named layouts accepted in DatetimeFormat.Formats.
var LayoutAliases = map[string]string{
	"rfc3339":          time.RFC3339,
	"rfc3339nano":      time.RFC3339Nano,
	"iso8601":          time.RFC3339,
	"datetime":         time.DateTime,
	"datetime_t":       "2006-01-02T15:04:05",
	"datetime_minutes": "2006-01-02 15:04",
	"date":             time.DateOnly,
	"time":             time.TimeOnly,
	"rfc1123":          time.RFC1123,
	"rfc1123z":         time.RFC1123Z,
	"kitchen":          time.Kitchen,
}

var strftime = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'j': "002",
	'%': "%",
}

// Layout resolves a DatetimeFormat entry into a Go layout. Aliases are looked up
// case-insensitively; entries containing "%" are read as strftime patterns;
// anything else is already a Go layout.
func Layout(format string) string {
	if l, ok := LayoutAliases[strings.ToLower(format)]; ok {
		return l
	}

	if !strings.Contains(format, "%") {
		return format
	}

	var b strings.Builder

	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}

		if l, ok := strftime[format[i+1]]; ok {
			b.WriteString(l)
			i++

			continue
		}

		b.WriteByte(format[i])
	}

	return b.String()
}

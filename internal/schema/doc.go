// Package schema describes configuration fields: their declared types,
// constraints, option pools, advanced formats and per-field auto-fix policy.
//
// A Schema is built once, validated, and never modified afterwards. Replacing a
// schema at runtime means building a new one and swapping the reference.
//
// Schemas are usually loaded from YAML (or JSON) files:
//
//	name: app
//	fields:
//	  - name: port
//	    type: int
//	    default: 8080
//	    ge: 1024
//	    le: 65535
//	  - name: span
//	    type: range
//	    format: {type: range, item_type: int, min_item_value: 0, max_item_value: 100}
package schema

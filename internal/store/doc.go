// Package store reads and writes configuration trees as JSON, YAML, TOML or
// MessagePack, chosen by file extension. Writes go to a temporary file in the
// target directory and are renamed into place.
package store

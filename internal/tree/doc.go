// Package tree reads and writes nested configuration values addressed by
// dotted paths such as "db.replicas.0.host".
//
// A tree is built from records (map[string]any, string-keyed maps and structs),
// sequences ([]any, typed slices and arrays) and scalars. Segments that look like
// non-negative integers index sequences; on records every segment is a key.
// Set never mutates its input: the nodes along the path are copied and every
// other node is shared with the original tree.
package tree

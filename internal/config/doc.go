// Package config holds named configuration instances and the registry that
// owns them.
//
// An Instance keeps an immutable active tree for one schema. Every update
// builds a candidate tree with the path accessor, runs the auto-fix pass and
// the strict validator over it, and swaps the result in only when it
// validates. Readers never block writers and always see a complete snapshot.
package config

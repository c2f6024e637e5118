// Package policy defines the repair policies used by the auto-fix pass and
// how a field's overrides are layered on top of the global settings.
//
// Each format family has its own closed set of policy values. Settings holds
// the global choice for every family; Overrides holds the optional per-field
// replacements; Resolve merges them key by key into an Effective policy that
// is computed fresh for every fix pass.
package policy

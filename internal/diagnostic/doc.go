// Package diagnostic provides structured errors, warnings and infos produced
// while building schemas and running auto-fix passes.
//
// Key capabilities:
//   - Schema build problems (unknown types, invalid policies, conflicting bounds)
//   - Unknown input fields with "did you mean" suggestions
//   - Per-field fix decisions that were rejected or failed
package diagnostic

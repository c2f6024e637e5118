// Package match provides string similarity for option snapping and
// field-name suggestions.
//
// Key functions:
//   - Levenshtein: computes edit distance between strings (rune aware)
//   - Ratio: normalized similarity in [0, 1]
//   - Closest: picks the nearest candidate above a similarity threshold
//   - Suggest: ranks declared field names for "did you mean" hints
package match

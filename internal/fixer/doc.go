// Package fixer repairs single raw field values before strict validation.
//
// Each format family has one fixer. A fixer never panics and never returns an
// error: it reports an Outcome. Only Modified and Unmodified outcomes carry a
// value that may replace the input; Bypassed, Rejected and Failed outcomes carry
// the original input unchanged, so the validator sees exactly what the caller
// supplied and can explain what is wrong with it.
//
// Fix selects the fixer for a field:
//
//  1. an explicit format (range, multiple_choice, list_conversion, boolean,
//     datetime, path, multiple_ranges, single_choice)
//  2. an options pool (single choice)
//  3. a numeric type or numeric bounds (numeric)
//  4. otherwise the value passes through unmodified
package fixer

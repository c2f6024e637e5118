// Package validate is the strict validator that runs after the auto-fix pass.
//
// It fills defaults for absent fields, reports missing required fields,
// coerces every value to its declared type and enforces the field's
// constraints: numeric bounds, string length and pattern, options, format
// rules for ranges, lists and multi-selects, and CEL rule predicates.
// Nothing is repaired here; a value either conforms or is reported.
package validate

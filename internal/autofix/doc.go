// Package autofix runs the auto-fix pass over an untrusted input map.
//
// A pass captures one schema snapshot, walks the declared fields that are
// present in the input and hands each value to the fixer selected for it.
// Accepted outcomes replace the input value in a fresh map; every other
// outcome keeps the caller's value. Records are fixed recursively, absent
// fields are never added and undeclared keys pass through with a
// suggestion diagnostic. The input is never modified.
package autofix

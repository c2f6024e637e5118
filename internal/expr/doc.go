// Package expr evaluates small arithmetic expressions typed into numeric fields,
// such as "8000+100", "/2" or "min + (max-min)/2".
//
// Expressions are lexed and parsed into a tree, and the tree is checked against
// an allow-list of node kinds, functions and names before anything is evaluated.
// Attribute access, subscripts, string literals and unknown calls are reported as
// errors without evaluation. Every failure wraps ErrNoResult so callers can fall
// back to the unevaluated input.
package expr

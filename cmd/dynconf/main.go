// Package main provides the dynconf CLI.
//
// dynconf inspects and edits configuration files against a schema:
//   - show, get and set read and write values in JSON, YAML, TOML or MessagePack files
//   - fix runs the auto-fix pass over a file and reports what each fixer did
//   - fields lists what a schema declares
//   - eval evaluates an arithmetic expression the way numeric fields do
//   - watch keeps a file fixed and validated while it is edited
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

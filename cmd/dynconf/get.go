package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dynconf/internal/autofix"
	"dynconf/internal/schema"
	"dynconf/internal/store"
	"dynconf/internal/tree"
	"dynconf/internal/validate"
)

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file> <key>",
		Short: "Print one value from a configuration file",
		Args:  cobra.ExactArgs(2),
		RunE:  runGet,
	}

	cmd.Flags().String("schema", "", "schema file to fix and validate against")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(cmd, false)
	if err != nil {
		return err
	}

	var values map[string]any

	if s == nil {
		values, err = store.Load(args[0])
	} else {
		values, err = loadActive(cmd, s, args[0])
	}

	if err != nil {
		return err
	}

	v, err := tree.Get(values, args[1])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))

	return nil
}

// loadActive reads file and runs it through the fix pass and the validator.
func loadActive(cmd *cobra.Command, s *schema.Schema, file string) (map[string]any, error) {
	raw, err := store.Load(file)
	if err != nil {
		return nil, err
	}

	res := autofix.Run(s, raw, autofix.Options{Logger: newLogger(cmd)})

	return validate.Validate(s, res.Fixed)
}

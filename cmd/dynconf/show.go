package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dynconf/internal/store"
	"dynconf/internal/tree"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print every value in a configuration file",
		Long: "Print the leaves of a configuration file as dotted paths. With --schema the file is " +
			"fixed and validated first, and defaults are filled in.",
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().String("schema", "", "schema file to fix and validate against")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	flat := tree.Flatten(values)
	for _, k := range tree.SortedKeys(flat) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", pathColor.Sprint(k), formatValue(flat[k]))
	}

	return nil
}

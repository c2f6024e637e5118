package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dynconf/internal/fixer"
)

func newFieldsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fields --schema <schema> [scope]",
		Short: "List the fields a schema declares",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFields,
	}

	cmd.Flags().String("schema", "", "schema file (required)")

	return cmd
}

func runFields(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(cmd, true)
	if err != nil {
		return err
	}

	scope := ""
	if len(args) == 1 {
		scope = args[0]
	}

	names, err := s.FieldNames(scope)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tTYPE\tFIXER\tDEFAULT\tNOTES")

	for _, name := range names {
		path := name
		if scope != "" {
			path = scope + "." + name
		}

		f, err := s.Field(path)
		if err != nil {
			return err
		}

		family, _ := fixer.Select(f)

		var notes []string
		if f.Required {
			notes = append(notes, "required")
		}

		if f.Nullable {
			notes = append(notes, "nullable")
		}

		if f.ReadOnly {
			notes = append(notes, "read-only")
		}

		if !f.Bounds.IsZero() {
			notes = append(notes, f.Bounds.String())
		}

		def := "-"
		if f.HasDefault() {
			def = formatValue(f.Default)
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", path, f.Type, family, def, strings.Join(notes, ", "))
	}

	return tw.Flush()
}

package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"dynconf/internal/autofix"
	"dynconf/internal/fixer"
	"dynconf/internal/store"
	"dynconf/internal/validate"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix --schema <schema> <file>",
		Short: "Run the auto-fix pass over a configuration file",
		Long: "Run every field of the file through its fixer and report the outcome. Unchanged fields " +
			"are hidden unless --all is set. With --write the fixed file replaces the original once it validates.",
		Args: cobra.ExactArgs(1),
		RunE: runFix,
	}

	cmd.Flags().String("schema", "", "schema file (required)")
	cmd.Flags().String("current", "", "file whose values bind to v and x in expressions")
	cmd.Flags().Bool("all", false, "report unchanged fields too")
	cmd.Flags().Bool("write", false, "write the fixed values back to the file")
	cmd.Flags().Bool("dump", false, "dump the fixed tree with its Go types")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	s, diags, err := buildSchema(cmd)
	if err != nil {
		return err
	}

	all, _ := cmd.Flags().GetBool("all")
	write, _ := cmd.Flags().GetBool("write")
	dump, _ := cmd.Flags().GetBool("dump")
	currentFile, _ := cmd.Flags().GetString("current")

	raw, err := store.Load(args[0])
	if err != nil {
		return err
	}

	opts := autofix.Options{Logger: newLogger(cmd)}

	if currentFile != "" {
		if opts.Current, err = store.Load(currentFile); err != nil {
			return err
		}
	}

	res := autofix.Run(s, raw, opts)
	out := cmd.OutOrStdout()

	for _, r := range res.Fields {
		if r.Family == fixer.FamilyNone && r.Outcome.Kind == fixer.Unmodified {
			continue
		}

		if all || r.Outcome.Kind != fixer.Unmodified {
			printReport(out, r.Path, r.Original, r.Outcome)
		}
	}

	diags.Merge(res.Diagnostics)

	for _, d := range diags.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}

	if dump {
		spew.Fdump(out, res.Fixed)
	}

	fixed, err := validate.Validate(s, res.Fixed)
	if err != nil {
		return err
	}

	if write {
		if err := store.Save(args[0], fixed); err != nil {
			return err
		}

		fmt.Fprintf(out, "wrote %s (%d fields changed)\n", args[0], len(res.Changed()))
	}

	return nil
}

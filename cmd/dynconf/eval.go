package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dynconf/internal/expr"
)

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an arithmetic expression",
		Long: "Evaluate an expression with the same evaluator numeric fields use. " +
			"Names are bound with --var, for example --var v=80 for \"v*2\".",
		Args: cobra.ExactArgs(1),
		RunE: runEval,
	}

	cmd.Flags().StringArray("var", nil, "bind a name, as name=value (repeatable)")

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	vars, _ := cmd.Flags().GetStringArray("var")

	bindings, err := parseVars(vars, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
	if err != nil {
		return err
	}

	v, err := expr.Evaluate(args[0], bindings)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(v, 'g', -1, 64))

	return nil
}

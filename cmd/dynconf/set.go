package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dynconf/internal/config"
	"dynconf/internal/store"
	"dynconf/internal/tree"
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Change one value in a configuration file",
		Long: "Change one value and write the file back. Without --schema the value is decoded as a " +
			"YAML scalar. With --schema the raw text goes through the auto-fix pass, so expressions " +
			"such as \"8000+100\" or \"/2\" and near-miss options are accepted, and the result must validate.",
		Args: cobra.ExactArgs(3),
		RunE: runSet,
	}

	cmd.Flags().String("schema", "", "schema file to fix and validate against")

	return cmd
}

func runSet(cmd *cobra.Command, args []string) error {
	file, key, raw := args[0], args[1], args[2]

	s, err := loadSchema(cmd, false)
	if err != nil {
		return err
	}

	if s == nil {
		return setPlain(file, key, raw)
	}

	inst, err := openInstance(cmd, s, file, config.InstanceOptions{})
	if err != nil {
		return err
	}

	res, err := inst.Set(key, raw)
	if res != nil {
		if report, ok := res.Report(key); ok {
			printReport(cmd.OutOrStdout(), key, report.Original, report.Outcome)
		}
	}

	if err != nil {
		return err
	}

	return inst.Persist()
}

func setPlain(file, key, raw string) error {
	values, err := store.Load(file)

	switch {
	case errors.Is(err, os.ErrNotExist):
		values = map[string]any{}
	case err != nil:
		return err
	}

	var v any
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		v = raw
	}

	updated, err := tree.Set(values, key, tree.Normalize(v))
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}

	return store.Save(file, updated.(map[string]any))
}

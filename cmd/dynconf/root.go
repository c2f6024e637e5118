package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dynconf/internal/config"
	"dynconf/internal/diagnostic"
	"dynconf/internal/fixer"
	"dynconf/internal/schema"
)

var (
	modifiedColor = color.New(color.FgYellow, color.Bold)
	keptColor     = color.New(color.FgGreen)
	bypassedColor = color.New(color.FgCyan)
	rejectedColor = color.New(color.FgRed, color.Bold)
	failedColor   = color.New(color.FgMagenta, color.Bold)
	pathColor     = color.New(color.Bold)
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dynconf",
		Short:         "Schema-driven configuration with auto-fix",
		Long:          "dynconf validates configuration files against a schema and repairs near-miss values.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "log every fixer decision to stderr")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newShowCmd(),
		newGetCmd(),
		newSetCmd(),
		newFixCmd(),
		newFieldsCmd(),
		newEvalCmd(),
		newWatchCmd(),
	)

	return root
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// loadSchema reads the --schema flag. It returns nil when the flag is unset
// and required is false.
func loadSchema(cmd *cobra.Command, required bool) (*schema.Schema, error) {
	path, _ := cmd.Flags().GetString("schema")
	if path == "" && !required {
		return nil, nil
	}

	s, _, err := buildSchema(cmd)

	return s, err
}

// buildSchema loads the required --schema file and returns its build warnings.
func buildSchema(cmd *cobra.Command) (*schema.Schema, diagnostic.Diagnostics, error) {
	path, _ := cmd.Flags().GetString("schema")
	if path == "" {
		return nil, diagnostic.Diagnostics{}, fmt.Errorf("--schema is required")
	}

	return schema.BuildFile(path)
}

// openInstance registers file as the backing store of an instance of s.
func openInstance(cmd *cobra.Command, s *schema.Schema, file string, opts config.InstanceOptions) (*config.Instance, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, err
	}

	reg := config.NewRegistry(config.Options{DefaultDir: filepath.Dir(abs), Logger: newLogger(cmd)})
	opts.SavePath = abs

	return reg.Register(s.Name(), s, opts)
}

func outcomeColor(k fixer.Kind) *color.Color {
	switch k {
	case fixer.Modified:
		return modifiedColor
	case fixer.Bypassed:
		return bypassedColor
	case fixer.Rejected:
		return rejectedColor
	case fixer.Failed:
		return failedColor
	default:
		return keptColor
	}
}

// formatValue renders a tree value for terminal output. Records and lists
// are printed as compact JSON.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case map[string]any, []any:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}

		return string(data)
	default:
		return fmt.Sprint(x)
	}
}

func printReport(w io.Writer, path string, original any, out fixer.Outcome) {
	c := outcomeColor(out.Kind)

	line := fmt.Sprintf("%s: %s", pathColor.Sprint(path), formatValue(original))
	if out.Kind == fixer.Modified {
		line += " -> " + formatValue(out.Value)
	}

	line += "  " + c.Sprint(out.Kind)
	if out.Err != nil {
		line += " (" + out.Err.Error() + ")"
	}

	fmt.Fprintln(w, line)
}

// parseVars decodes repeated name=value flags.
func parseVars(vars []string, parse func(string) (float64, error)) (map[string]float64, error) {
	out := make(map[string]float64, len(vars))

	for _, kv := range vars {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --var %q, want name=value", kv)
		}

		v, err := parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid --var %q: %w", kv, err)
		}

		out[strings.TrimSpace(name)] = v
	}

	return out, nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dynconf/internal/config"
	"dynconf/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch --schema <schema> <file>",
		Short: "Reload a configuration file whenever it changes",
		Long: "Load the file as a configuration instance and keep it fixed and validated while it is " +
			"edited. Runs until interrupted.",
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().String("schema", "", "schema file (required)")
	cmd.Flags().Duration("interval", time.Second, "poll interval")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := loadSchema(cmd, true)
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")

	inst, err := openInstance(cmd, s, args[0], config.InstanceOptions{})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := watch.New(watch.Options{PollInterval: interval, Logger: newLogger(cmd)})
	if err := w.Add(inst); err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (schema %s)\n", inst.SavePath(), s.Name())

	<-ctx.Done()

	return w.Stop()
}

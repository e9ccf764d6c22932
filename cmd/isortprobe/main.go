package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"isortprobe/config"
	"isortprobe/probe"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.New()
	var logger *zap.Logger

	cmd := &cobra.Command{
		Use:   "isortprobe",
		Short: "Show how isort's project context changes import grouping",
		Long: `Runs isort three times against the same block of imports:
from a directory without project markers, from the project checkout,
and from the neutral directory with --src pointing at the project.
The raw output of each run is printed, followed by an explanation.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := cfg.Resolve(cmd)
			if err != nil {
				return err
			}

			logger, err = newLogger(cfg.Verbose)
			if err != nil {
				return errors.Wrap(err, "initializing logger")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			// PersistentPostRun is skipped when RunE fails.
			defer func() { _ = logger.Sync() }()

			runner := probe.NewRunner(cfg.Probe, logger)
			matrix := probe.NewMatrix(cfg.Probe, runner, logger)

			_, err := matrix.Run(cmd.Context(), cmd.OutOrStdout())
			return err
		},
	}

	cfg.BindFlags(cmd)
	return cmd
}

// newLogger builds a production logger on stderr; debug level when verbose.
var newLogger = func(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

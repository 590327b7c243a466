package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [target...]",
	Short: "Run targets, or the default sequence when none are given",
	Long: `Runs each target's commands in order. Dependencies run first and each target
runs at most once. The first command that exits non-zero stops the run and its
exit code becomes the exit code of devtasks.`,
	Args: cobra.ArbitraryArgs,
	RunE: runTargets,
}

func init() {
	runCmd.Flags().BoolVarP(&config.DryRun, "dry-run", "n", false, "Print commands without running them")

	rootCmd.AddCommand(runCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	tf, err := loadTaskfile()
	if err != nil {
		return err
	}

	telemetryProvider, err := createTelemetryProvider(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := telemetryProvider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	r, err := newRunner(cmd, tf, logger, telemetryProvider.Tracer())
	if err != nil {
		return err
	}

	result, err := r.Run(ctx, args...)
	if err != nil {
		return err
	}
	logger.Debug().Str("run_id", result.RunID).Int("targets", len(result.Targets)).Msg("Run complete")
	return nil
}

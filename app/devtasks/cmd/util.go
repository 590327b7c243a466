package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/cchalm/devtasks/internal/builtin"
	"github.com/cchalm/devtasks/internal/logging"
	"github.com/cchalm/devtasks/internal/runner"
	"github.com/cchalm/devtasks/internal/taskfile"
	"github.com/cchalm/devtasks/internal/telemetry"
)

// exitCodeInterrupted is the conventional exit code for a process killed by SIGINT
const exitCodeInterrupted = 130

func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Setup graceful shutdown. The running tool sees the same interrupt from the terminal, so the first one only
	// stops devtasks from starting anything further
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		select {
		case <-interrupt:
		case <-ctx.Done():
			signal.Stop(interrupt)
			return
		}
		cancel()
		<-interrupt
		os.Exit(exitCodeInterrupted)
	}()

	return ctx, func() {
		signal.Stop(interrupt)
		cancel()
	}
}

func newLogger(cmd *cobra.Command) (zerolog.Logger, error) {
	return logging.New(cmd.ErrOrStderr(), config.logLevel())
}

func loadTaskfile() (*taskfile.Taskfile, error) {
	if path := config.taskfilePath(); path != "" {
		return taskfile.Load(path)
	}
	dir := config.Dir
	if dir == "" {
		dir = "."
	}
	return taskfile.Discover(dir)
}

func createTelemetryProvider(ctx context.Context, logger zerolog.Logger) (*telemetry.Provider, error) {
	telemetryConfig := telemetry.TelemetryConfig{
		Enabled:  config.Env.TelemetryEnabled,
		Endpoint: config.Env.OTLPEndpoint,
		Insecure: config.Env.OTLPInsecure,
		Version:  versionInfo.Version,
	}
	return telemetry.NewProvider(ctx, telemetryConfig, logger)
}

func newRunner(cmd *cobra.Command, tf *taskfile.Taskfile, logger zerolog.Logger, tracer trace.Tracer) (*runner.Runner, error) {
	vars, err := taskfile.ParseAssignments(config.Sets)
	if err != nil {
		return nil, err
	}
	return runner.New(tf, runner.Options{
		Vars:     vars,
		DryRun:   config.DryRun,
		Dir:      config.Dir,
		Stdin:    cmd.InOrStdin(),
		Stdout:   cmd.OutOrStdout(),
		Stderr:   cmd.ErrOrStderr(),
		Builtins: builtin.NewRegistry(),
		Tracer:   tracer,
		Logger:   &logger,
	}), nil
}

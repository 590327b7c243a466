package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	appconfig "github.com/cchalm/devtasks/internal/config"
	"github.com/cchalm/devtasks/internal/runner"
)

var rootCmd = &cobra.Command{
	Use:   "devtasks [target...]",
	Short: "Run named development tasks",
	Long: `devtasks maps short target names to fixed invocations of external tools.
With no target it runs the default sequence from the task file. The task file is
devtasks.yaml, devtasks.yml or devtasks.toml in the working directory; without one
the built-in targets fmt, lint, doc, test and tree are available.`,
	Args:              cobra.ArbitraryArgs,
	PersistentPreRunE: loadRootConfig,
	RunE:              runTargets,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps an error returned by Execute to a process exit code. A failing external command's exit code is
// passed through, and a run stopped by an interrupt exits 130
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *runner.ExitError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	if errors.Is(err, context.Canceled) {
		return exitCodeInterrupted
	}
	return 1
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	env, err := appconfig.Load()
	if err != nil {
		return err
	}
	config.Env = env
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&config.TaskfilePath, "file", "f", "", "Task file to use instead of discovering one (env "+appconfig.EnvFile+")")
	rootCmd.PersistentFlags().StringVarP(&config.Dir, "dir", "C", "", "Directory to discover the task file in and run commands from")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, off (env "+appconfig.EnvLogLevel+")")
	rootCmd.PersistentFlags().StringArrayVar(&config.Sets, "set", nil, "Override a task file var, KEY=VALUE (repeatable)")

	rootCmd.Flags().BoolVarP(&config.DryRun, "dry-run", "n", false, "Print commands without running them")
}

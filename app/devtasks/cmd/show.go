package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cchalm/devtasks/internal/builtin"
	"github.com/cchalm/devtasks/internal/runner"
)

var showCmd = &cobra.Command{
	Use:   "show <target>",
	Short: "Print the commands a target runs, with vars expanded",
	Args:  cobra.ExactArgs(1),
	RunE:  showTarget,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func showTarget(cmd *cobra.Command, args []string) error {
	tf, err := loadTaskfile()
	if err != nil {
		return err
	}
	r, err := newRunner(cmd, tf, zerolog.Nop(), nil)
	if err != nil {
		return err
	}

	name := args[0]
	plan, err := r.Plan(name)
	if err != nil {
		return err
	}
	steps, err := r.Steps(name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(plan) > 1 {
		fmt.Fprintf(out, "# runs after: %v\n", plan[:len(plan)-1])
	}
	registry := builtin.NewRegistry()
	for _, step := range steps {
		if step.IsBuiltin() {
			desc := "unknown builtin"
			if b, err := registry.Lookup(step.Builtin); err == nil {
				desc = b.Description()
			}
			fmt.Fprintf(out, "%s  # %s\n", step, desc)
			continue
		}
		fmt.Fprintln(out, runner.CommandLine(step, r.StepDir(step)))
	}
	return nil
}

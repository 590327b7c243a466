package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cchalm/devtasks/internal/taskfile"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the targets defined by the task file",
	Args:    cobra.NoArgs,
	RunE:    listTargets,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listTargets(cmd *cobra.Command, _ []string) error {
	tf, err := loadTaskfile()
	if err != nil {
		return err
	}
	vars, err := taskfile.ParseAssignments(config.Sets)
	if err != nil {
		return err
	}
	resolved := tf.ResolveVars(vars)

	out := cmd.OutOrStdout()
	renderer := lipgloss.NewRenderer(out)

	width := 0
	for _, name := range tf.Names() {
		width = max(width, len(name))
	}
	nameStyle := renderer.NewStyle().Bold(true).Width(width + 2)
	markerStyle := renderer.NewStyle().Foreground(lipgloss.Color("2")).Width(2)
	descStyle := renderer.NewStyle().Faint(true)

	source := "built-in targets"
	if !tf.IsEmbedded() {
		source = tf.Path
	}
	fmt.Fprintf(out, "Targets (%s):\n", source)

	for _, t := range tf.Targets {
		marker := ""
		if tf.IsDefault(t.Name) {
			marker = "*"
		}
		desc := resolved.ExpandString(t.Description)
		if len(t.Deps) > 0 {
			desc = strings.TrimSpace(desc + " (after " + strings.Join(t.Deps, ", ") + ")")
		}
		fmt.Fprintf(out, "  %s%s%s\n", markerStyle.Render(marker), nameStyle.Render(t.Name), descStyle.Render(desc))
	}

	if len(tf.Default) > 0 {
		fmt.Fprintf(out, "\n* default: %s\n", strings.Join(tf.Default, " "))
	}
	return nil
}

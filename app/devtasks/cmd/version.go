package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionInfo = struct {
	Version   string
	GitCommit string
	BuildTime string
}{"dev", "unknown", "unknown"}

// SetVersionInfo records build metadata injected by ldflags
func SetVersionInfo(version, gitCommit, buildTime string) {
	versionInfo.Version = version
	versionInfo.GitCommit = gitCommit
	versionInfo.BuildTime = buildTime
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devtasks %s (commit %s, built %s)\n", versionInfo.Version, versionInfo.GitCommit, versionInfo.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

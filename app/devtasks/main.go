package main

import (
	"fmt"
	"os"

	"github.com/cchalm/devtasks/app/devtasks/cmd"
)

// Version information set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	cmd.SetVersionInfo(Version, GitCommit, BuildTime)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "devtasks:", err)
		os.Exit(cmd.ExitCode(err))
	}
}

package cmd

import (
	appconfig "github.com/cchalm/devtasks/internal/config"
)

var config = Config{}

type Config struct {
	// Environment, overridden by the flags below when they are set
	Env appconfig.Config

	TaskfilePath string
	Dir          string
	LogLevel     string

	// Run options
	DryRun bool
	Sets   []string
}

// taskfilePath returns the task file named by --file, falling back to DEVTASKS_FILE
func (c Config) taskfilePath() string {
	if c.TaskfilePath != "" {
		return c.TaskfilePath
	}
	return c.Env.TaskfilePath
}

func (c Config) logLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return c.Env.LogLevel
}

package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	// ExitCodeNotFound is reported when the executable of a step cannot be found, matching the shell convention
	ExitCodeNotFound = 127
	// ExitCodeSignaled is added to the signal number when a step is killed by a signal, as shells do
	ExitCodeSignaled = 128
)

// Command is a fully expanded external invocation
type Command struct {
	Argv []string
	Env  []string // KEY=VALUE pairs added to the inherited environment
	Dir  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// CommandRunner abstracts process execution so the runner can be exercised without spawning processes
type CommandRunner interface {
	// Run executes cmd and returns its exit code. A non-zero exit is not an error; err is set only when the process
	// could not be run to completion
	Run(ctx context.Context, cmd Command) (int, error)
}

// ExecRunner executes commands on the local host
type ExecRunner struct {
	// WaitDelay bounds how long to wait for a process to exit after it has been interrupted
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, c Command) (int, error) {
	if len(c.Argv) == 0 {
		return 1, errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	// Give the tool a chance to clean up before it is killed
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = 10 * time.Second
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if ctx.Err() != nil {
		return -1, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return ExitCodeSignaled + int(ws.Signal()), nil
		}
		return exitErr.ExitCode(), nil
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ExitCodeNotFound, err
	}
	return 1, err
}

package runner

import (
	"bytes"
	"context"
	"runtime"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunner_ExitCode(t *testing.T) {
	skipOnWindows(t)

	var stdout bytes.Buffer
	code, err := ExecRunner{}.Run(context.Background(), Command{
		Argv:   []string{"sh", "-c", "echo $DEVTASKS_EXEC_TEST; exit 3"},
		Env:    []string{"DEVTASKS_EXEC_TEST=hello"},
		Stdout: &stdout,
	})
	require.NoError(t, err)
	require.Equal(t, 3, code)
	require.Equal(t, "hello\n", stdout.String())
}

func TestExecRunner_Dir(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	var stdout bytes.Buffer
	code, err := ExecRunner{}.Run(context.Background(), Command{
		Argv:   []string{"sh", "-c", "pwd -P"},
		Dir:    dir,
		Stdout: &stdout,
	})
	require.NoError(t, err)
	require.Equal(t, 0, code)
	require.NotEmpty(t, stdout.String())
}

func TestExecRunner_NotFound(t *testing.T) {
	code, err := ExecRunner{}.Run(context.Background(), Command{
		Argv: []string{"devtasks-definitely-not-a-real-binary"},
	})
	require.Error(t, err)
	require.Equal(t, ExitCodeNotFound, code)
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{})
	require.Error(t, err)
}

func TestExecRunner_KilledBySignal(t *testing.T) {
	skipOnWindows(t)

	code, err := ExecRunner{}.Run(context.Background(), Command{
		Argv: []string{"sh", "-c", "kill -TERM $$"},
	})
	require.NoError(t, err)
	require.Equal(t, ExitCodeSignaled+int(syscall.SIGTERM), code)
	require.Equal(t, 143, code)
}

func TestExecRunner_CancelledContext(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ExecRunner{}.Run(ctx, Command{Argv: []string{"sh", "-c", "sleep 5"}})
	require.ErrorIs(t, err, context.Canceled)
}

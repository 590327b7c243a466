package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	appconfig "github.com/cchalm/devtasks/internal/config"
	"github.com/cchalm/devtasks/internal/runner"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{appconfig.EnvFile, appconfig.EnvLogLevel, appconfig.EnvTelemetry, appconfig.EnvOTLPEndpoint, appconfig.EnvOTLPInsecure} {
		t.Setenv(key, "")
	}

	config = Config{}
	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(&bytes.Buffer{})
	err := rootCmd.Execute()
	return stdout.String(), err
}

func writeTaskfile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "devtasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestList_BuiltinTargets(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "list")
	require.NoError(t, err)

	require.Contains(t, out, "Targets (built-in targets):")
	for _, name := range []string{"fmt", "lint", "doc", "test", "tree"} {
		require.Contains(t, out, name)
	}
	require.Contains(t, out, "Print non-standard import dependencies for linux/amd64")
	require.Contains(t, out, "* default: fmt lint doc test")
}

func TestList_SetOverridesDescriptionVars(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "--set", "goos=darwin", "--set", "goarch=arm64", "list")
	require.NoError(t, err)
	require.Contains(t, out, "darwin/arm64")
}

func TestRoot_DryRunDefaultSequence(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "--dry-run")
	require.NoError(t, err)
	require.Equal(t, "$ go fmt ./...\n$ staticcheck -checks all ./...\n$ go doc -all .\n$ go test ./...\n", out)
}

func TestRun_DryRunNamedTargets(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "run", "-n", "test", "lint")
	require.NoError(t, err)
	require.Equal(t, "$ go test ./...\n$ staticcheck -checks all ./...\n", out)
}

func TestShow_ExpandsVars(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "--set", "goos=windows", "show", "tree")
	require.NoError(t, err)
	require.Equal(t, "CGO_ENABLED=0 GOARCH=amd64 GOOS=windows go list -deps -f '{{if not .Standard}}{{.ImportPath}}{{end}}' ./...\n", out)
}

func TestShow_Builtin(t *testing.T) {
	out, err := execute(t, "--dir", t.TempDir(), "show", "fmt")
	require.NoError(t, err)
	require.Contains(t, out, "go fmt ./...\n")
	require.Contains(t, out, "builtin:format-taskfile  # rewrite the task file in canonical form")
}

func TestShow_Deps(t *testing.T) {
	path := writeTaskfile(t, `
targets:
  - {name: gen, steps: [{run: [generate]}]}
  - {name: build, deps: [gen], steps: [{run: [compile]}]}
`)
	out, err := execute(t, "-f", path, "show", "build")
	require.NoError(t, err)
	require.Equal(t, "# runs after: [gen]\ncompile\n", out)
}

func TestRun_UnknownTarget(t *testing.T) {
	_, err := execute(t, "--dir", t.TempDir(), "deploy")
	var ute runner.UnknownTargetError
	require.ErrorAs(t, err, &ute)
	require.Equal(t, 1, ExitCode(err))
}

func TestRun_BadSet(t *testing.T) {
	_, err := execute(t, "--dir", t.TempDir(), "--set", "novalue", "-n")
	require.Error(t, err)
}

func TestRun_FailurePropagatesExitCodeAndStopsSequence(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	path := writeTaskfile(t, fmt.Sprintf(`
default: [first, second]
targets:
  - name: first
    steps:
      - run: [sh, -c, "exit 4"]
  - name: second
    steps:
      - run: [touch, %q]
`, marker))

	_, err := execute(t, "-f", path)
	require.Error(t, err)

	var ee *runner.ExitError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "first", ee.Target)
	require.Equal(t, 4, ExitCode(err))

	_, statErr := os.Stat(marker)
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRun_Succeeds(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	path := writeTaskfile(t, `
targets:
  - name: hello
    steps:
      - run: [sh, -c, "echo hello from $WHO"]
        env: {WHO: "${who}"}
`)
	out, err := execute(t, "-f", path, "--set", "who=devtasks", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello from devtasks\n", out)
}

func TestVersion(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "today")
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.Equal(t, "devtasks 1.2.3 (commit abc123, built today)\n", out)
}

func TestExitCode(t *testing.T) {
	require.Equal(t, 0, ExitCode(nil))
	require.Equal(t, 1, ExitCode(errors.New("boom")))
	require.Equal(t, 2, ExitCode(fmt.Errorf("wrapped: %w", &runner.ExitError{Code: 2})))
	require.Equal(t, 1, ExitCode(&runner.ExitError{Code: -1}))
	require.Equal(t, 143, ExitCode(&runner.ExitError{Code: 143}))
	require.Equal(t, 130, ExitCode(context.Canceled))
	require.Equal(t, 130, ExitCode(fmt.Errorf("target 'test': `go test ./...`: %w", context.Canceled)))
}

func TestRun_ShellSyntaxReachesTheTool(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	path := writeTaskfile(t, `
targets:
  - name: awk
    steps:
      - run: [sh, -c, "echo a b | awk '{print $2}'"]
`)
	out, err := execute(t, "-f", path, "awk")
	require.NoError(t, err)
	require.Equal(t, "b\n", out)
}

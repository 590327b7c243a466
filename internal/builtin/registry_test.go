package builtin

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cchalm/devtasks/internal/taskfile"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()

	b, err := r.Lookup("format-taskfile")
	require.NoError(t, err)
	require.NotEmpty(t, b.Description())

	_, err = r.Lookup("nope")
	var ube UnknownBuiltinError
	require.ErrorAs(t, err, &ube)
	require.Equal(t, "nope", ube.Name)
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	r.Register("aaa", &FormatTaskfile{})
	require.Equal(t, []string{"aaa", "format-taskfile"}, r.Names())
}

func writeMessyTaskfile(t *testing.T) (string, *taskfile.Taskfile) {
	path := filepath.Join(t.TempDir(), "devtasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("targets:\n  -    name: a\n       steps: [{run: \"true\"}]\n"), 0o644))
	tf, err := taskfile.Load(path)
	require.NoError(t, err)
	return path, tf
}

func TestFormatTaskfile_Rewrites(t *testing.T) {
	path, tf := writeMessyTaskfile(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = FormatTaskfile{}.Run(context.Background(), &Context{Taskfile: tf, Stdout: &bytes.Buffer{}, Logger: zerolog.Nop()})
	require.NoError(t, err)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, string(before), string(after))
}

func TestFormatTaskfile_DryRunLeavesFileAlone(t *testing.T) {
	path, tf := writeMessyTaskfile(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	var out bytes.Buffer
	err = FormatTaskfile{}.Run(context.Background(), &Context{Taskfile: tf, Stdout: &out, Logger: zerolog.Nop(), DryRun: true})
	require.NoError(t, err)
	require.Contains(t, out.String(), "would format "+path)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(before), string(after))
}

func TestFormatTaskfile_EmbeddedDefault(t *testing.T) {
	var out bytes.Buffer
	err := FormatTaskfile{}.Run(context.Background(), &Context{Taskfile: taskfile.Default(), Stdout: &out, Logger: zerolog.Nop()})
	require.NoError(t, err)
	require.Empty(t, out.String())
}

func TestFormatTaskfile_TOMLWithCommentsIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devtasks.toml")
	src := "# project tasks\n[[targets]]\n  name=\"a\"\n  [[targets.steps]]\n  run=\"true\"\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	tf, err := taskfile.Load(path)
	require.NoError(t, err)

	var logs bytes.Buffer
	err = FormatTaskfile{}.Run(context.Background(), &Context{Taskfile: tf, Stdout: &bytes.Buffer{}, Logger: zerolog.New(&logs)})
	require.NoError(t, err)
	require.Contains(t, logs.String(), `"level":"warn"`)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, src, string(after))
}

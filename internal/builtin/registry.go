// Package builtin provides the in-process steps a task file can invoke by name.
package builtin

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"

	"github.com/cchalm/devtasks/internal/taskfile"
)

// Builtin is a step that runs inside devtasks instead of as an external process
type Builtin interface {
	// Description is a one-line summary shown by `devtasks show`
	Description() string

	// Run performs the builtin. Builtins must honor DryRun by reporting what they would do without side effects
	Run(ctx context.Context, bctx *Context) error
}

// Context provides what builtins need while running
type Context struct {
	Taskfile *taskfile.Taskfile
	Stdout   io.Writer
	Logger   zerolog.Logger
	DryRun   bool
}

// UnknownBuiltinError is returned when a step names a builtin that is not registered
type UnknownBuiltinError struct {
	Name string
}

func (ube UnknownBuiltinError) Error() string {
	return fmt.Sprintf("unknown builtin '%s'", ube.Name)
}

// Registry manages all available builtins
type Registry struct {
	builtins map[string]Builtin
}

// NewRegistry creates a registry with all available builtins
func NewRegistry() *Registry {
	registry := &Registry{
		builtins: make(map[string]Builtin),
	}

	registry.Register("format-taskfile", &FormatTaskfile{})

	return registry
}

// Register adds or replaces a builtin
func (r *Registry) Register(name string, b Builtin) {
	r.builtins[name] = b
}

// Lookup returns a builtin by name
func (r *Registry) Lookup(name string) (Builtin, error) {
	b, ok := r.builtins[name]
	if !ok {
		return nil, UnknownBuiltinError{Name: name}
	}
	return b, nil
}

// Names returns the registered builtin names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builtins))
	for name := range r.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

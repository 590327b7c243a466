// Package taskfile loads, validates and formats task definition files.
package taskfile

import (
	"fmt"
	"strings"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a task file on disk
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Taskfile is the parsed contents of a task definition file
type Taskfile struct {
	// Default lists the targets run when none are named on the command line
	Default []string          `yaml:"default,omitempty" toml:"default,omitempty"`
	Vars    map[string]string `yaml:"vars,omitempty" toml:"vars,omitempty"`
	Targets []Target          `yaml:"targets" toml:"targets"`

	// Path is where the file was loaded from. Empty for the embedded default file
	Path   string `yaml:"-" toml:"-"`
	Format Format `yaml:"-" toml:"-"`
}

// Target is a named sequence of steps
type Target struct {
	Name        string   `yaml:"name" toml:"name"`
	Description string   `yaml:"description,omitempty" toml:"description,omitempty"`
	Deps        []string `yaml:"deps,omitempty" toml:"deps,omitempty"`
	Steps       []Step   `yaml:"steps" toml:"steps"`
}

// Step is either an external command (Run) or an in-process builtin, never both
type Step struct {
	Run     Argv              `yaml:"run,omitempty" toml:"run,omitempty"`
	Builtin string            `yaml:"builtin,omitempty" toml:"builtin,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
	Dir     string            `yaml:"dir,omitempty" toml:"dir,omitempty"`
}

// IsBuiltin reports whether the step runs in-process
func (s Step) IsBuiltin() bool {
	return strings.TrimSpace(s.Builtin) != ""
}

// String renders the step the way it would be typed in a shell
func (s Step) String() string {
	if s.IsBuiltin() {
		return "builtin:" + s.Builtin
	}
	return s.Run.String()
}

// IsEmbedded reports whether the task file is the built-in default rather than a file on disk
func (tf *Taskfile) IsEmbedded() bool {
	return tf.Path == ""
}

// Lookup returns the target with the given name
func (tf *Taskfile) Lookup(name string) (*Target, bool) {
	for i := range tf.Targets {
		if tf.Targets[i].Name == name {
			return &tf.Targets[i], true
		}
	}
	return nil, false
}

// Names returns target names in declaration order
func (tf *Taskfile) Names() []string {
	names := make([]string, 0, len(tf.Targets))
	for _, t := range tf.Targets {
		names = append(names, t.Name)
	}
	return names
}

// IsDefault reports whether the named target is part of the default sequence
func (tf *Taskfile) IsDefault(name string) bool {
	for _, d := range tf.Default {
		if d == name {
			return true
		}
	}
	return false
}

// Argv is a command line split into arguments. In a task file it may be written either as a list or as a single
// string, which is split with shell quoting rules but no expansion
type Argv []string

// SplitArgv splits a command line the way a POSIX shell would split words. Quotes group words and are removed;
// $ and globs are kept literally
func SplitArgv(line string) (Argv, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command %q: %w", line, err)
	}
	return args, nil
}

func (a Argv) String() string {
	quoted := make([]string, len(a))
	for i, arg := range a {
		quoted[i] = quoteArg(arg)
	}
	return strings.Join(quoted, " ")
}

func (a *Argv) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		args, err := SplitArgv(node.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*a = args
		return nil
	case yaml.SequenceNode:
		var args []string
		if err := node.Decode(&args); err != nil {
			return err
		}
		*a = args
		return nil
	default:
		return fmt.Errorf("line %d: run must be a string or a list of strings", node.Line)
	}
}

// MarshalYAML writes argv as a flow sequence so each command stays on one line
func (a Argv) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, arg := range a {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: arg})
	}
	return node, nil
}

// UnmarshalTOML implements toml.Unmarshaler
func (a *Argv) UnmarshalTOML(data interface{}) error {
	switch v := data.(type) {
	case string:
		args, err := SplitArgv(v)
		if err != nil {
			return err
		}
		*a = args
		return nil
	case []interface{}:
		args := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("run[%d]: expected string, got %T", i, item)
			}
			args = append(args, s)
		}
		*a = args
		return nil
	default:
		return fmt.Errorf("run must be a string or an array of strings, got %T", data)
	}
}

func quoteArg(arg string) string {
	if arg == "" {
		return "''"
	}
	if strings.ContainsAny(arg, " \t\n'\"\\$`{}*?;&|<>()") {
		return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
	}
	return arg
}

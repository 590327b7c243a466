package taskfile

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"sort"
	"strings"
)

// varPattern matches ${name}, and $${name} which escapes to a literal ${name}. Bare $ is left for the tool to see
var varPattern = regexp.MustCompile(`\$?\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Vars resolves ${name} references. Lookups fall through task file vars, then the process environment
type Vars map[string]string

// ResolveVars returns the task file vars overlaid with overrides
func (tf *Taskfile) ResolveVars(overrides map[string]string) Vars {
	vars := make(Vars, len(tf.Vars)+len(overrides))
	maps.Copy(vars, tf.Vars)
	maps.Copy(vars, overrides)
	return vars
}

func (v Vars) lookup(key string) string {
	if value, ok := v[key]; ok {
		return value
	}
	return os.Getenv(key)
}

// ExpandString substitutes ${name} references in s. Any other use of $ passes through unchanged
func (v Vars) ExpandString(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "$$") {
			return match[1:]
		}
		return v.lookup(match[2 : len(match)-1])
	})
}

// Expand returns a copy of step with every argument, env value and dir expanded
func (v Vars) Expand(s Step) Step {
	out := Step{
		Builtin: s.Builtin,
		Dir:     v.ExpandString(s.Dir),
	}
	if len(s.Run) > 0 {
		out.Run = make(Argv, len(s.Run))
		for i, arg := range s.Run {
			out.Run[i] = v.ExpandString(arg)
		}
	}
	if len(s.Env) > 0 {
		out.Env = make(map[string]string, len(s.Env))
		for k, value := range s.Env {
			out.Env[k] = v.ExpandString(value)
		}
	}
	return out
}

// Environ renders the step env as sorted KEY=VALUE pairs
func (s Step) Environ() []string {
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+s.Env[k])
	}
	return env
}

// ParseAssignments parses KEY=VALUE pairs as given on the command line
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment '%s', expected KEY=VALUE", pair)
		}
		out[key] = value
	}
	return out, nil
}

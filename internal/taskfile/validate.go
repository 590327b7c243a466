package taskfile

import (
	"fmt"
	"regexp"
	"strings"
)

var targetNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidationError describes a structural problem in a task file
type ValidationError struct {
	Target string // Empty when the problem is not specific to one target
	Reason string
}

func (ve ValidationError) Error() string {
	if ve.Target == "" {
		return fmt.Sprintf("invalid task file: %s", ve.Reason)
	}
	return fmt.Sprintf("invalid task file: target '%s': %s", ve.Target, ve.Reason)
}

// Validate checks names, step shape, references and the dependency graph
func (tf *Taskfile) Validate() error {
	if len(tf.Targets) == 0 {
		return ValidationError{Reason: "no targets defined"}
	}

	seen := make(map[string]bool, len(tf.Targets))
	for _, t := range tf.Targets {
		if !targetNamePattern.MatchString(t.Name) {
			return ValidationError{Target: t.Name, Reason: fmt.Sprintf("name must match %s", targetNamePattern)}
		}
		if seen[t.Name] {
			return ValidationError{Target: t.Name, Reason: "defined more than once"}
		}
		seen[t.Name] = true

		if len(t.Steps) == 0 && len(t.Deps) == 0 {
			return ValidationError{Target: t.Name, Reason: "has neither steps nor deps"}
		}
		for i, s := range t.Steps {
			if err := validateStep(s); err != nil {
				return ValidationError{Target: t.Name, Reason: fmt.Sprintf("step %d: %s", i+1, err)}
			}
		}
	}

	for _, name := range tf.Default {
		if !seen[name] {
			return ValidationError{Reason: fmt.Sprintf("default references unknown target '%s'", name)}
		}
	}
	for _, t := range tf.Targets {
		for _, dep := range t.Deps {
			if !seen[dep] {
				return ValidationError{Target: t.Name, Reason: fmt.Sprintf("depends on unknown target '%s'", dep)}
			}
		}
	}

	return tf.checkCycles()
}

func validateStep(s Step) error {
	hasRun := len(s.Run) > 0
	hasBuiltin := s.IsBuiltin()
	switch {
	case hasRun && hasBuiltin:
		return fmt.Errorf("run and builtin are mutually exclusive")
	case !hasRun && !hasBuiltin:
		return fmt.Errorf("one of run or builtin is required")
	case hasBuiltin && len(s.Env) > 0:
		return fmt.Errorf("env is not supported for builtin steps")
	}
	return nil
}

func (tf *Taskfile) checkCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(tf.Targets))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return ValidationError{Target: name, Reason: "dependency cycle: " + strings.Join(append(path, name), " -> ")}
		}
		state[name] = visiting
		t, _ := tf.Lookup(name)
		for _, dep := range t.Deps {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}

	for _, t := range tf.Targets {
		if err := visit(t.Name, nil); err != nil {
			return err
		}
	}
	return nil
}

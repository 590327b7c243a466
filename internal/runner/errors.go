package runner

import "fmt"

// ExitError reports an external command that exited non-zero or could not be started. The remaining steps and
// targets were not run
type ExitError struct {
	Target  string
	Command string
	Code    int
	Err     error // Set when the command never started, e.g. the executable was not found
}

func (ee *ExitError) Error() string {
	if ee.Err != nil {
		return fmt.Sprintf("target '%s': `%s`: %v", ee.Target, ee.Command, ee.Err)
	}
	return fmt.Sprintf("target '%s': `%s` exited with code %d", ee.Target, ee.Command, ee.Code)
}

func (ee *ExitError) Unwrap() error {
	return ee.Err
}

// UnknownTargetError is returned when a requested target is not defined in the task file
type UnknownTargetError struct {
	Name string
}

func (ute UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target '%s'", ute.Name)
}

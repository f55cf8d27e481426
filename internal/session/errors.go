package session

import "fmt"

// ValidationError reports invalid wizard step input. The step's state
// is left unchanged so the caller may correct the input and re-enter
// the same step.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransitionError reports an operation invoked at the wrong step.
type TransitionError struct {
	Step Step
	Op   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s at step %s", e.Op, e.Step)
}

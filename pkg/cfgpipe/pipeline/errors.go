package pipeline

import (
	"errors"
	"fmt"
)

// Sentinel errors for pipeline definitions.
var (
	// ErrUnknownKind indicates a step names an unregistered transform kind.
	ErrUnknownKind = errors.New("unknown transform kind")

	// ErrUnknownFunction indicates a formula names an unregistered function.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrInvalidStep indicates a malformed step or a missing or invalid
	// parameter.
	ErrInvalidStep = errors.New("invalid step")
)

// StepError reports the definition error of one step.
type StepError struct {
	// Index is the position of the step in its transforms list.
	Index int

	// Kind is the transform kind of the step, empty if it could not be read.
	Kind string

	Err error
}

func (e *StepError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("step %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func missingParam(name string) error {
	return fmt.Errorf("%w: missing parameter %q", ErrInvalidStep, name)
}

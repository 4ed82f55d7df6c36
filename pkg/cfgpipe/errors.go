package cfgpipe

import (
	"errors"
	"fmt"
)

// Sentinel errors for running and resuming pipelines.
var (
	// ErrNilContext indicates Run or Resume was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")

	// ErrNilTransform indicates NewCompose received a nil transform.
	ErrNilTransform = errors.New("nil transform")

	// ErrNoSnapshots indicates Resume found no snapshot for the run.
	ErrNoSnapshots = errors.New("no snapshots found for run")

	// ErrPipelineMismatch indicates a snapshot was taken by a different
	// pipeline than the one resuming it.
	ErrPipelineMismatch = errors.New("snapshot does not match pipeline")
)

// TransformError reports which transform of a Compose failed.
type TransformError struct {
	// Index is the position of the transform in the Compose.
	Index int
	// Name is the transform name.
	Name string
	// Err is the error returned by the transform.
	Err error
}

// Error implements the error interface.
func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %d (%s): %v", e.Index, e.Name, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *TransformError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised by a transform.
type PanicError struct {
	// Index is the position of the transform in the Compose.
	Index int
	// Name is the transform name.
	Name string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("transform %d (%s) panicked: %v", e.Index, e.Name, e.Value)
}

// CancellationError reports a run stopped by its context before a transform.
type CancellationError struct {
	// Index is the transform that would have run next.
	Index int
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before transform %d: %v", e.Index, e.Cause)
}

// Unwrap returns the cancellation cause.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// SnapshotError wraps a failure to persist or read a run snapshot.
type SnapshotError struct {
	// Index is the transform the snapshot belongs to.
	Index int
	// Op is the failed operation ("encode", "marshal", "save", "decode").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot %s after transform %d: %v", e.Op, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *SnapshotError) Unwrap() error {
	return e.Err
}

// failedIndex returns the transform index carried by err, or -1.
func failedIndex(err error) int {
	var (
		te *TransformError
		pe *PanicError
		ce *CancellationError
		se *SnapshotError
	)
	switch {
	case errors.As(err, &te):
		return te.Index
	case errors.As(err, &pe):
		return pe.Index
	case errors.As(err, &ce):
		return ce.Index
	case errors.As(err, &se):
		return se.Index
	default:
		return -1
	}
}

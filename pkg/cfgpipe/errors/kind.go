// Package errors defines the error kinds shared by every cfgpipe package.
//
// Each failure is classified by one of five sentinel errors. Packages wrap
// the sentinel with context ("%w: key %q") so callers can branch with
// errors.Is or ask KindOf for the classification:
//   - ErrLookup: a nested key path does not exist
//   - ErrType: a value has the wrong shape for the operation
//   - ErrValue: a numeric or structural argument is out of its domain
//   - ErrSignature: a function is bound to the wrong number of inputs
//   - ErrIO: persisting a configuration failed
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per kind.
var (
	// ErrLookup indicates a key path could not be resolved.
	ErrLookup = errors.New("key not found")

	// ErrType indicates a value has an incompatible type or structure.
	ErrType = errors.New("incompatible type")

	// ErrValue indicates an argument is outside its valid domain.
	ErrValue = errors.New("invalid value")

	// ErrSignature indicates a function arity does not match its bindings.
	ErrSignature = errors.New("signature mismatch")

	// ErrIO indicates a read or write of a document failed.
	ErrIO = errors.New("i/o failure")
)

// Kind classifies an error.
type Kind int

const (
	// KindUnknown is returned for errors that carry no cfgpipe sentinel.
	KindUnknown Kind = iota

	// KindLookup wraps ErrLookup.
	KindLookup

	// KindType wraps ErrType.
	KindType

	// KindValue wraps ErrValue.
	KindValue

	// KindSignature wraps ErrSignature.
	KindSignature

	// KindIO wraps ErrIO.
	KindIO
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindLookup:
		return "lookup"
	case KindType:
		return "type"
	case KindValue:
		return "value"
	case KindSignature:
		return "signature"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Sentinel returns the sentinel error for the kind, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	switch k {
	case KindLookup:
		return ErrLookup
	case KindType:
		return ErrType
	case KindValue:
		return ErrValue
	case KindSignature:
		return ErrSignature
	case KindIO:
		return ErrIO
	default:
		return nil
	}
}

// KindOf determines the kind of err by walking its wrap chain.
// The first matching sentinel wins, in declaration order.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var keyErr *KeyError
	if errors.As(err, &keyErr) && keyErr.Kind != KindUnknown {
		return keyErr.Kind
	}

	for _, k := range []Kind{KindLookup, KindType, KindValue, KindSignature, KindIO} {
		if errors.Is(err, k.Sentinel()) {
			return k
		}
	}
	return KindUnknown
}

// KeyError reports a failure at a specific key path.
type KeyError struct {
	// Path is the dotted path that failed.
	Path string

	// Op is the operation that was attempted ("get", "set", "remove", ...).
	Op string

	// Kind classifies the failure.
	Kind Kind

	// Err is an optional underlying cause.
	Err error
}

// Error implements the error interface.
func (e *KeyError) Error() string {
	msg := fmt.Sprintf("%s %q", e.Op, e.Path)
	if s := e.Kind.Sentinel(); s != nil {
		msg += ": " + s.Error()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind sentinel and the cause to errors.Is/As.
func (e *KeyError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Errorf wraps the sentinel for kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	s := kind.Sentinel()
	if s == nil {
		return fmt.Errorf(format, args...)
	}
	return fmt.Errorf("%w: "+format, append([]any{s}, args...)...)
}

// Is reports whether err is of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package errs defines the simulation kernel's error taxonomy.
//
// Every kind is carried as a *KernelError wrapped with github.com/pkg/errors
// so a failing call site keeps a stack trace, the way juicemud.go's
// WithStack/StackTrace pair attaches one to storage and game errors.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the kernel's error taxonomy entries.
type Kind int

const (
	EmptyQueue Kind = iota
	Interrupted
	StopSimulation
	InvalidYield
	MixedEnvironment
	AlreadyTriggered
	NegativeDelay
	CapacityViolation
)

func (k Kind) String() string {
	switch k {
	case EmptyQueue:
		return "EmptyQueue"
	case Interrupted:
		return "Interrupted"
	case StopSimulation:
		return "StopSimulation"
	case InvalidYield:
		return "InvalidYield"
	case MixedEnvironment:
		return "MixedEnvironment"
	case AlreadyTriggered:
		return "AlreadyTriggered"
	case NegativeDelay:
		return "NegativeDelay"
	case CapacityViolation:
		return "CapacityViolation"
	default:
		return "Unknown"
	}
}

// KernelError is the concrete error value behind every kernel error kind.
// Cause carries kind-specific payload: the interrupt cause, the offending
// yielded value, and so on.
type KernelError struct {
	Kind  Kind
	Cause any
}

func (e *KernelError) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

// New builds a stack-traced error of the given kind.
func New(kind Kind, cause any) error {
	return errors.WithStack(&KernelError{Kind: kind, Cause: cause})
}

// Is reports whether err is (or wraps) a KernelError of the given kind.
func Is(err error, kind Kind) bool {
	var ke *KernelError
	if !errors.As(err, &ke) {
		return false
	}
	return ke.Kind == kind
}

// Cause returns the KernelError's Cause payload, if err is one.
func Cause(err error) (any, bool) {
	var ke *KernelError
	if !errors.As(err, &ke) {
		return nil, false
	}
	return ke.Cause, true
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// WithStack attaches a stack trace to err if it doesn't already carry one,
// mirroring juicemud.go's WithStack.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); ok {
		return err
	}
	return errors.WithStack(err)
}

// Package errors provides structured error handling for the reactron engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindHost indicates a host renderer operation failed.
	KindHost
	// KindInvariant indicates a reconciliation contract was violated.
	KindInvariant
	// KindComponent indicates a component function failed during invocation.
	KindComponent
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates a configuration error.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindInvariant:
		return "invariant"
	case KindComponent:
		return "component"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	// ErrNoActiveComponent is returned when state is read outside a component invocation.
	ErrNoActiveComponent = stderrors.New("no functional component is being rendered")
	// ErrReentrantRender is returned when a component tries to start a render synchronously.
	ErrReentrantRender = stderrors.New("render called while a component function is running")
	// ErrNotAttached is returned by hosts asked to remove a node that has no parent.
	ErrNotAttached = stderrors.New("host node is not attached")
	// ErrUnknownNode is returned by hosts handed a node they did not create.
	ErrUnknownNode = stderrors.New("unknown host node")
)

// EngineError represents a structured error raised by the engine.
type EngineError struct {
	// Op is the operation that failed (e.g., "core.commitPlacement").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Fiber is the type of the fiber being processed, if any.
	Fiber string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EngineError) Error() string {
	if e.Fiber != "" {
		return fmt.Sprintf("%s [%s] fiber=%s: %v", e.Op, e.Kind, e.Fiber, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "scheduler.Frame").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ComponentError represents a failure while invoking a component function.
type ComponentError struct {
	// Component is the name of the component function that failed.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ComponentError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in component %s: %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in component %s: %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in component %s", e.Component)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// InvariantError is raised (as a panic value) when the engine finds its own
// bookkeeping in a state the algorithm never produces.
type InvariantError struct {
	// Op is the operation that detected the violation.
	Op string
	// Detail describes what was missing or inconsistent.
	Detail string
	// Err optionally links a sentinel such as ErrNoActiveComponent.
	Err error
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invariant violated in %s: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("invariant violated in %s: %s", e.Op, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// Invariant panics with an InvariantError.
func Invariant(op, format string, args ...any) {
	panic(&InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an engine operation fails.
	HandleError(err *EngineError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleComponentError is called when a component invocation fails.
	HandleComponentError(err *ComponentError)
}

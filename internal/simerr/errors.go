// Package simerr provides the error taxonomy shared by the simulator packages.
package simerr

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess      = 0
	ExitRuntimeError = 1
	ExitConfigError  = 2
)

// Kind classifies an error.
type Kind int

const (
	// KindConfig marks an invalid configuration detected at construction time.
	KindConfig Kind = iota
	// KindComputation marks a numerical failure raised while a simulation runs.
	KindComputation
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "configuration error"
	case KindComputation:
		return "computation error"
	default:
		return "error"
	}
}

// Error is the structured error returned by constructors and the engine.
type Error struct {
	Kind    Kind
	Field   string // offending parameter or setting, if any
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Config returns a configuration error for field.
func Config(field, format string, args ...any) error {
	return &Error{Kind: KindConfig, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Computation wraps a numerical failure.
func Computation(cause error, format string, args ...any) error {
	return &Error{Kind: KindComputation, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsConfig reports whether err is, or wraps, a configuration error.
func IsConfig(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConfig
}

// IsComputation reports whether err is, or wraps, a computation error.
func IsComputation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindComputation
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	if IsConfig(err) {
		return ExitConfigError
	}
	return ExitRuntimeError
}

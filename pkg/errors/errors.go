// Package errors defines the error taxonomy shared by the index builder, the
// codecs and the CLI. Callers classify failures with errors.Is against the
// sentinels below and map them to process exit codes with ExitCode.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrCorrupt            = errors.New("corrupt index")
	ErrInvalidDestination = errors.New("invalid destination")
	ErrInvalidInput       = errors.New("invalid input")
)

// Process exit codes reported by the CLI.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitNotFound           = 2
	ExitCorrupt            = 3
	ExitInvalidDestination = 4
	ExitInvalidInput       = 5
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCodeFor(sentinel),
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCodeFor(sentinel),
	}
}

// Corruptf is shorthand for the decoders, which report most of their
// failures as ErrCorrupt.
func Corruptf(format string, args ...any) *AppError {
	return Newf(ErrCorrupt, format, args...)
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrCorrupt):
		return ExitCorrupt
	case errors.Is(err, ErrInvalidDestination):
		return ExitInvalidDestination
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}

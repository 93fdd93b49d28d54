package ucirun

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for session operations.
var (
	// ErrUnavailable indicates the engine cannot start
	// (binary not configured or not found on PATH).
	ErrUnavailable = errors.New("ucirun: engine unavailable")

	// ErrProtocol indicates a handshake did not complete as expected
	// (stream closed or deadline expired before uciok/readyok).
	ErrProtocol = errors.New("ucirun: protocol error")

	// ErrInvalidState indicates an operation was attempted in a session
	// state that forbids it. Returned errors are *StateError values.
	ErrInvalidState = errors.New("ucirun: invalid state")

	// ErrTerminated indicates the engine process exited, its output stream
	// closed, or the session was closed. Every operation except Close
	// fails with ErrTerminated afterwards.
	ErrTerminated = errors.New("ucirun: engine terminated")

	// ErrInvalidInput indicates caller-supplied text (FEN, move, option
	// name or value) that cannot be written as a single protocol line.
	ErrInvalidInput = errors.New("ucirun: invalid input")
)

// Option validation errors. Local to the option registry: nothing is sent
// to the engine when one of these is returned.
var (
	ErrOptionNotFound     = errors.New("ucirun: option not found")
	ErrOptionKindMismatch = errors.New("ucirun: option kind mismatch")
	ErrOptionOutOfRange   = errors.New("ucirun: option value out of range")
	ErrOptionNotAllowed   = errors.New("ucirun: option value not allowed")
)

// StateError reports an operation attempted in a state that forbids it.
// It matches ErrInvalidState with errors.Is.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("ucirun: %s: invalid in state %s", e.Op, e.State)
}

// Is reports whether target is ErrInvalidState.
func (e *StateError) Is(target error) bool { return target == ErrInvalidState }

// OptionError reports a rejected option assignment. Err is one of the
// ErrOption* sentinels.
type OptionError struct {
	Name  string
	Value string
	Err   error
}

func (e *OptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Name)
	}
	return fmt.Sprintf("%v: %q = %q", e.Err, e.Name, e.Value)
}

func (e *OptionError) Unwrap() error { return e.Err }

// ExitError represents an engine process that exited with a non-zero status.
// Wraps the underlying error to preserve the error chain; consumers can
// errors.As to *exec.ExitError for signal detail.
//
// Code semantics: positive = exit status, negative (-1) = signal-killed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "ucirun: exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode extracts the exit code from an error chain containing *ExitError.
// Returns (0, false) if the error does not contain an ExitError.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}

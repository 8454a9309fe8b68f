// Package result defines the failure taxonomy shared by the gateway, the
// commands and the automation host, and the Result value every operator
// intent returns.
//
// Only the gateway classifies faults. Everything above it forwards the code
// it received (CodeOf on the wrapped error) and never invents a new one; it
// may only reject malformed input with InvalidArgument or fail with CodeNone.
package result

import (
	"context"
	"errors"
	"fmt"
)

// Code categorizes a failure.
type Code string

const (
	// CodeNone marks a failure that carries only a message (empty history,
	// empty queue) or a success.
	CodeNone Code = ""

	// InvalidArgument is malformed caller input, caught before any I/O.
	InvalidArgument Code = "INVALID_ARGUMENT"

	// NotConnected means the operation needs a session and there is none.
	NotConnected Code = "NOT_CONNECTED"

	// NotFound means a named field, scene or item is absent after refresh.
	NotFound Code = "NOT_FOUND"

	// TypeMismatch means the field exists but lacks the expected settable key.
	TypeMismatch Code = "TYPE_MISMATCH"

	// Timeout means a per-call or connect deadline was exceeded.
	Timeout Code = "TIMEOUT"

	// ObsError is any other remote-side fault.
	ObsError Code = "OBS_ERROR"

	// Canceled means the caller cancelled the operation.
	Canceled Code = "CANCELED"
)

// Error is a classified failure.
type Error struct {
	// Code identifies the failure category.
	Code Code

	// Op names the gateway operation that failed ("set_text", "connect").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying fault, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix := string(e.Code)
	if e.Op != "" {
		prefix = fmt.Sprintf("%s %s", e.Op, e.Code)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying fault.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error without an underlying fault.
func New(code Code, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// Wrap creates a classified error around an underlying fault.
func Wrap(code Code, op, message string, err error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: err}
}

// CodeOf extracts the code of the first classified error in err's chain.
// Bare context cancellation maps to Canceled; anything else unclassified
// is reported as ObsError. A nil error has CodeNone.
func CodeOf(err error) Code {
	if err == nil {
		return CodeNone
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	if errors.Is(err, context.Canceled) {
		return Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	return ObsError
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// Result is the outcome of an operator intent.
type Result struct {
	OK      bool   `json:"ok"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Ok returns a successful result.
func Ok(message string) Result {
	return Result{OK: true, Message: message}
}

// Okf returns a successful result with a formatted message.
func Okf(format string, args ...any) Result {
	return Ok(fmt.Sprintf(format, args...))
}

// Fail returns a failed result.
func Fail(code Code, message string, err error) Result {
	return Result{Code: code, Message: message, Err: err}
}

// FromError turns err into a failed result, forwarding its code.
// A nil err yields Ok(message).
func FromError(message string, err error) Result {
	if err == nil {
		return Ok(message)
	}
	return Result{
		Code:    CodeOf(err),
		Message: fmt.Sprintf("%s: %v", message, err),
		Err:     err,
	}
}

// String renders the result for logs and the CLI.
func (r Result) String() string {
	if r.OK {
		return "ok: " + r.Message
	}
	if r.Code == CodeNone {
		return "failed: " + r.Message
	}
	return fmt.Sprintf("failed [%s]: %s", r.Code, r.Message)
}

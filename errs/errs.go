// Package errs provides structured error types and helpers for lazy-pool.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Code identifies a pool error category.
type Code string

const (
	// CodeFactory indicates the object factory failed during construction.
	CodeFactory Code = "factory_failed"
	// CodeClosed indicates the pool has been torn down and cannot serve acquires.
	CodeClosed Code = "pool_closed"
	// CodeFinalized indicates a lease was released or discarded more than once.
	CodeFinalized Code = "already_finalized"
	// CodeInvalid indicates invalid construction or configuration input.
	CodeInvalid Code = "invalid_config"
	// CodeTimeout indicates a drain did not complete before its deadline.
	CodeTimeout Code = "shutdown_timeout"
)

// E captures structured error information produced across the pool stack.
type E struct {
	Pool    string
	Code    Code
	Message string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the named pool and error code.
func New(pool string, code Code, opts ...Option) *E {
	e := &E{
		Pool:    strings.TrimSpace(pool),
		Code:    code,
		Message: "",
		cause:   nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	pool := strings.TrimSpace(e.Pool)
	if pool == "" {
		pool = "unknown"
	}
	parts = append(parts, "pool="+pool)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the pool error code carried by err, if any.
func CodeOf(err error) (Code, bool) {
	var e *E
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Is reports whether err carries the given pool error code.
func Is(err error, code Code) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

package cirerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind categorizes the error
type Kind string

const (
	KindInternal    Kind = "internal"
	KindUnsupported Kind = "unsupported"
	KindLowering    Kind = "lowering"
)

// Error is the structured error type used throughout CIR generation
type Error struct {
	Cause  error
	Kind   Kind
	Op     string // component that detected the error, e.g. "coro.body"
	Func   string // function being lowered, if known
	Detail string
}

var (
	// ErrInternal matches every internal invariant violation.
	ErrInternal = &Error{Kind: KindInternal}
	// ErrUnsupported matches every not-yet-implemented construct.
	ErrUnsupported = &Error{Kind: KindUnsupported}
	// ErrLowering matches ordinary lowering failures.
	ErrLowering = &Error{Kind: KindLowering}
)

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(string(e.Kind))
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(e.Op)
		b.WriteByte(']')
	}
	if e.Func != "" {
		b.WriteString(" in @")
		b.WriteString(e.Func)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. A target without Op matches any Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// Internal creates an internal invariant violation.
func Internal(op, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Op: op, Detail: fmt.Sprintf(format, args...)}
}

// Unsupported creates a not-yet-implemented error naming the missing feature.
func Unsupported(op, feature string) *Error {
	return &Error{Kind: KindUnsupported, Op: op, Detail: feature + " is not implemented"}
}

// Lowering wraps an ordinary failure.
func Lowering(op string, cause error) *Error {
	return &Error{Kind: KindLowering, Op: op, Cause: cause}
}

// IsInternal reports whether err is an internal invariant violation.
func IsInternal(err error) bool {
	return err != nil && errors.Is(err, ErrInternal)
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

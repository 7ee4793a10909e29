package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind classifies a domain failure. The HTTP layer maps each kind to a status code.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindInvalidOperation  Kind = "INVALID_OPERATION"
	KindLockTimeout       Kind = "LOCK_TIMEOUT"
	KindConflict          Kind = "CONFLICT"
	KindInvalidInput      Kind = "VALIDATION"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindForbidden         Kind = "FORBIDDEN"
	KindInternal          Kind = "INTERNAL"
)

// Sentinels. errors.Is matches any *Error of the same kind against them.
var (
	ErrNotFound          = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrInvalidOperation  = &Error{Kind: KindInvalidOperation, Message: "invalid operation"}
	ErrLockTimeout       = &Error{Kind: KindLockTimeout, Message: "lock wait timed out"}
	ErrConflict          = &Error{Kind: KindConflict, Message: "conflict with current state"}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput, Message: "invalid input"}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrForbidden         = &Error{Kind: KindForbidden, Message: "access denied"}
)

// Error is a classified domain failure with an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether the whole operation may be attempted again.
func (e *Error) Retryable() bool {
	return e.Kind == KindLockTimeout || e.Kind == KindConflict
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) error { return newf(KindNotFound, format, args...) }

// InvalidOperation builds a KindInvalidOperation error.
func InvalidOperation(format string, args ...any) error {
	return newf(KindInvalidOperation, format, args...)
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(format string, args ...any) error { return newf(KindInvalidInput, format, args...) }

// Forbidden builds a KindForbidden error.
func Forbidden(format string, args ...any) error { return newf(KindForbidden, format, args...) }

// InsufficientStock reports the quantity on hand next to the quantity asked for.
func InsufficientStock(available, requested decimal.Decimal) error {
	return newf(KindInsufficientStock, "insufficient stock: available %s KG, requested %s KG",
		available.String(), requested.String())
}

// LockTimeout wraps a storage error raised while waiting on a row lock.
func LockTimeout(cause error) error {
	return &Error{Kind: KindLockTimeout, Message: "lock wait timed out", Cause: cause}
}

// Conflict wraps a concurrent-modification failure.
func Conflict(message string, cause error) error {
	return &Error{Kind: KindConflict, Message: message, Cause: cause}
}

// KindOf returns the kind of err, or KindInternal when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsRetryable reports whether err carries a retryable kind.
func IsRetryable(err error) bool {
	var de *Error
	return errors.As(err, &de) && de.Retryable()
}

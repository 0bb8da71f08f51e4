// Package apperr defines the error taxonomy shared by the services, the HTTP
// layer and the Go client. Every error that reaches a caller carries a Kind
// (how to react) and a Code (what happened).
package apperr

import (
	"errors"
	"fmt"
)

// Kind groups error codes by the reaction expected from the caller.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindTransport     Kind = "transport"
	KindInternal      Kind = "internal"
)

// Code identifies a specific failure. Codes are stable and travel in the
// "error" field of JSON error bodies.
type Code string

const (
	CodeValidationFailed     Code = "validation_failed"
	CodeInvalidTransition    Code = "invalid_transition"
	CodeAlreadyEvaluated     Code = "already_evaluated"
	CodeConfirmationRequired Code = "confirmation_required"
	CodeNotFinalized         Code = "not_finalized"
	CodeNotAuthorized        Code = "not_authorized"
	CodeNotFound             Code = "not_found"
	CodeUnavailable          Code = "unavailable"
	CodeInternal             Code = "internal_error"
)

// Error is the concrete error type of the engine.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	// Fields holds per-field violation codes for validation errors.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same code, so the package
// sentinels can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrInvalidTransition    = &Error{Kind: KindConflict, Code: CodeInvalidTransition}
	ErrAlreadyEvaluated     = &Error{Kind: KindConflict, Code: CodeAlreadyEvaluated}
	ErrConfirmationRequired = &Error{Kind: KindConflict, Code: CodeConfirmationRequired}
	ErrNotFinalized         = &Error{Kind: KindConflict, Code: CodeNotFinalized}
	ErrNotAuthorized        = &Error{Kind: KindAuthorization, Code: CodeNotAuthorized}
	ErrNotFound             = &Error{Kind: KindNotFound, Code: CodeNotFound}
	ErrValidation           = &Error{Kind: KindValidation, Code: CodeValidationFailed}
	ErrUnavailable          = &Error{Kind: KindTransport, Code: CodeUnavailable}
)

// New builds an error with a formatted message.
func New(kind Kind, code Code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition reports a state that has already moved past the precondition.
func InvalidTransition(format string, args ...any) *Error {
	return New(KindConflict, CodeInvalidTransition, format, args...)
}

func AlreadyEvaluated(ententeID uint, role string) *Error {
	return New(KindConflict, CodeAlreadyEvaluated, "entente %d already evaluated by %s", ententeID, role)
}

func ConfirmationRequired(format string, args ...any) *Error {
	return New(KindConflict, CodeConfirmationRequired, format, args...)
}

func NotFinalized(ententeID uint) *Error {
	return New(KindConflict, CodeNotFinalized, "entente %d is not signed", ententeID)
}

func NotAuthorized(format string, args ...any) *Error {
	return New(KindAuthorization, CodeNotAuthorized, format, args...)
}

func NotFound(resource string, id uint) *Error {
	return New(KindNotFound, CodeNotFound, "%s %d not found", resource, id)
}

// Validation wraps per-field violation codes.
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidationFailed, Fields: fields}
}

// Transport wraps a network failure. The whole operation may be retried.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Code: CodeUnavailable, Err: err}
}

// Internal wraps an unexpected failure (storage, encoding).
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Err: err}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// Retryable reports whether the caller may retry the whole operation.
// Conflicts and authorization failures describe real state and are never retried.
func Retryable(err error) bool {
	return err != nil && KindOf(err) == KindTransport
}

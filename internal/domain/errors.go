package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies lifecycle failures so the API edge can map them to
// status codes without string matching.
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NOT_FOUND"
	KindValidation    ErrorKind = "VALIDATION_ERROR"
	KindForbidden     ErrorKind = "FORBIDDEN"
	KindConflict      ErrorKind = "CONFLICT"
	KindInvalidQRCode ErrorKind = "INVALID_QR_CODE"
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NotFoundError(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func ForbiddenError(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func ConflictError(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func InvalidQRCodeError(err error) error {
	return &Error{Kind: KindInvalidQRCode, Message: "invalid QR code payload", Err: err}
}

// KindOf returns the error kind, or an empty kind for untyped errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

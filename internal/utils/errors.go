package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindRateLimited  ErrorKind = "rate_limited"
	KindInternal     ErrorKind = "internal"
)

var kindStatus = map[ErrorKind]int{
	KindValidation:   http.StatusUnprocessableEntity,
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindRateLimited:  http.StatusTooManyRequests,
	KindInternal:     http.StatusInternalServerError,
}

func (k ErrorKind) StatusCode() int {
	if code, ok := kindStatus[k]; ok {
		return code
	}
	return http.StatusInternalServerError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AppError is the only error shape handlers turn into an HTTP response.
type AppError struct {
	Kind    ErrorKind
	Message string
	Errors  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.Kind.StatusCode()
}

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &AppError{Kind: kind, Message: msg}
}

func NewValidationError(errs []FieldError) *AppError {
	return &AppError{Kind: KindValidation, Message: MsgValidationFailed, Errors: errs}
}

func NewBadRequestError(format string, args ...interface{}) *AppError {
	return newAppError(KindBadRequest, format, args...)
}

func NewUnauthorizedError(format string, args ...interface{}) *AppError {
	return newAppError(KindUnauthorized, format, args...)
}

func NewForbiddenError(format string, args ...interface{}) *AppError {
	return newAppError(KindForbidden, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, format, args...)
}

func NewRateLimitedError() *AppError {
	return newAppError(KindRateLimited, MsgRateLimited)
}

func NewInternalError(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: MsgInternalServer, Err: err}
}

// Wrap attaches a cause to an AppError without changing its kind or message.
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Kind: e.Kind, Message: e.Message, Errors: e.Errors, Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

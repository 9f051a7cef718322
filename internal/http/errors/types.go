package errors

import (
	"fmt"
	"net/http"
)

// AppError is the standard error envelope for HTTP responses.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // original cause, for logs only
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithDetail returns a copy carrying extra client-visible detail.
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy carrying the original error for logging.
func (e *AppError) WithCause(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New creates a new AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Common errors.
var (
	ErrBadRequest          = New(http.StatusBadRequest, "bad_request", "invalid request")
	ErrUnauthorized        = New(http.StatusUnauthorized, "unauthorized", "authentication required")
	ErrInvalidCredentials  = New(http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	ErrConflict            = New(http.StatusConflict, "conflict", "resource conflict")
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	ErrProviderUnreachable = New(http.StatusBadGateway, "provider_unreachable", "identity provider unreachable")
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "internal server error")
)

// FromError normalizes any error into an AppError.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

package errors

import (
	"errors"
	"net/http"
)

// AppError carries the HTTP status and client-facing message of a failure.
// Handlers hand it to gin via c.Error and the error middleware renders it.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message}
}

func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{Status: status, Code: code, Message: message, Err: err}
}

func BadRequest(code, message string) *AppError {
	if code == "" {
		code = ValidationInvalidInput
	}
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *AppError {
	if code == "" {
		code = ResourceNotFound
	}
	return New(http.StatusNotFound, code, message)
}

// Duplicate is a unique-key conflict on a single-record write. It is reported as 400.
func Duplicate(code, message string) *AppError {
	if code == "" {
		code = ResourceAlreadyExists
	}
	return New(http.StatusBadRequest, code, message)
}

// Upstream wraps a failure of an external collaborator such as the image host.
// The upstream message is surfaced when present.
func Upstream(err error, fallback string) *AppError {
	message := fallback
	if err != nil && err.Error() != "" {
		message = err.Error()
	}
	return Wrap(err, http.StatusInternalServerError, InternalExternalAPI, message)
}

func Internal(err error) *AppError {
	return Wrap(err, http.StatusInternalServerError, InternalServerError, "Internal Server Error")
}

// As extracts the first AppError in err's chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status an error will be rendered with
func StatusOf(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Status
	}
	return ParseError(err, "").Status
}

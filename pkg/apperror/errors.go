package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error for the client so it can pick how to present it
type Kind string

const (
	KindValidation    Kind = "validation_error"
	KindStockExceeded Kind = "stock_exceeded"
	KindLookup        Kind = "lookup_failure"
	KindSubmission    Kind = "submission_failure"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindBadRequest    Kind = "bad_request"
	KindInternal      Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause, if any
func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound       = &AppError{Code: http.StatusNotFound, Kind: KindNotFound, Message: "Resource not found"}
	ErrBadRequest     = &AppError{Code: http.StatusBadRequest, Kind: KindBadRequest, Message: "Bad request"}
	ErrInternalServer = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrConflict       = &AppError{Code: http.StatusConflict, Kind: KindConflict, Message: "Resource already exists"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kindForCode(code),
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	msg := "Validation failed"
	if len(fieldErrors) > 0 {
		msg = fieldErrors[0].Message
	}
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: msg,
		Errors:  fieldErrors,
	}
}

// NewFieldError creates a validation error for a single field
func NewFieldError(field, message string) *AppError {
	return NewValidationError([]FieldError{{Field: field, Message: message}})
}

// NewStockExceededError reports a quantity that is above what is left in stock
func NewStockExceededError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindStockExceeded,
		Message: message,
	}
}

// NewLookupError reports a medicine that could not be found or used
func NewLookupError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindLookup,
		Message: message,
		cause:   cause,
	}
}

// NewUpstreamError reports a failed call to the remote pharmacy API
func NewUpstreamError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindLookup,
		Message: message,
		cause:   cause,
	}
}

// NewSubmissionError reports a bill that could not be persisted
func NewSubmissionError(message string, cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindSubmission,
		Message: message,
		cause:   cause,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
		cause:   err,
	}
}

func kindForCode(code int) Kind {
	switch code {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindInternal
	}
}

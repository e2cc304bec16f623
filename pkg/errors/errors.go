package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrValidation         = errors.New("validation error")
	ErrServiceUnavailable = errors.New("service not configured")
	ErrUpstream           = errors.New("upstream service error")
	ErrDataShape          = errors.New("malformed upstream data")
	ErrPersistence        = errors.New("persistence error")
	ErrNotFound           = errors.New("resource not found")
	ErrInternal           = errors.New("internal server error")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// WithPage annotates the error with the page number where it occurred.
func (e *AppError) WithPage(page int) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details["page_number"] = fmt.Sprintf("%d", page)
	e.Message = fmt.Sprintf("%s (page %d)", e.Message, page)
	return e
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common error constructors

// Validation reports bad or missing request fields. No side effects have
// been performed when this is raised.
func Validation(message string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// ValidationDetails reports field-level validation failures.
func ValidationDetails(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// ServiceUnavailable reports that a required external capability is not
// configured. Checked before any network call is made.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Err:        ErrServiceUnavailable,
		Code:       "SERVICE_UNAVAILABLE",
		Message:    fmt.Sprintf("%s is not configured", service),
		StatusCode: http.StatusServiceUnavailable,
	}
}

// Upstream reports a failed external service call.
func Upstream(err error, message string) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrUpstream, err),
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

// UpstreamMsg reports an upstream failure without a wrapped cause.
func UpstreamMsg(message string) *AppError {
	return &AppError{
		Err:        ErrUpstream,
		Code:       "UPSTREAM_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

// DataShape reports that generative output did not have the expected
// structure (not a JSON array of objects).
func DataShape(message string) *AppError {
	return &AppError{
		Err:        ErrDataShape,
		Code:       "DATA_SHAPE_ERROR",
		Message:    message,
		StatusCode: http.StatusBadGateway,
	}
}

// Persistence reports a failed storage commit. The failing batch has been
// rolled back.
func Persistence(err error) *AppError {
	return &AppError{
		Err:        fmt.Errorf("%w: %w", ErrPersistence, err),
		Code:       "PERSISTENCE_ERROR",
		Message:    "failed to persist extracted questions",
		StatusCode: http.StatusInternalServerError,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}

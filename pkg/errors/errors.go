package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ValidationError represents a validation failure with field-level details
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// HTTPStatus returns the HTTP status for this error
func (e *ValidationError) HTTPStatus() int {
	return http.StatusBadRequest
}

// AlreadyExistsError represents a resource already exists error
type AlreadyExistsError struct {
	Resource string
	Message  string
	Err      error
}

// NewAlreadyExistsError creates a new already exists error
func NewAlreadyExistsError(resource, message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		Resource: resource,
		Message:  message,
	}
}

// Error implements the error interface
func (e *AlreadyExistsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

// Unwrap returns the wrapped error
func (e *AlreadyExistsError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *AlreadyExistsError) HTTPStatus() int {
	return http.StatusConflict
}

// InternalError represents an internal server error with context
type InternalError struct {
	Message string
	Err     error
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *InternalError {
	return &InternalError{
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface
func (e *InternalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *InternalError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error
func (e *InternalError) HTTPStatus() int {
	return http.StatusInternalServerError
}

// NotImplementedError is returned by operations that exist on the wire
// but have no server-side behavior.
type NotImplementedError struct {
	Operation string
}

// NewNotImplementedError creates a new not implemented error
func NewNotImplementedError(operation string) *NotImplementedError {
	return &NotImplementedError{Operation: operation}
}

// Error implements the error interface
func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s is not implemented", e.Operation)
}

// HTTPStatus returns the HTTP status for this error
func (e *NotImplementedError) HTTPStatus() int {
	return http.StatusNotImplemented
}

// HTTPStatuser interface for errors that can provide an HTTP status
type HTTPStatuser interface {
	HTTPStatus() int
}

// HTTPStatus resolves the HTTP status of err by walking its chain.
// Errors that carry no status map to 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var s HTTPStatuser
	if stderrors.As(err, &s) {
		return s.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Detail returns the innermost message useful to a client: the wrapped
// cause for internal and conflict errors, the error text otherwise.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var ie *InternalError
	if stderrors.As(err, &ie) && ie.Err != nil {
		return ie.Err.Error()
	}
	var ae *AlreadyExistsError
	if stderrors.As(err, &ae) && ae.Err != nil {
		return ae.Err.Error()
	}
	return err.Error()
}

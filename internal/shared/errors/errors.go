package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found or is not owned by the caller
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeValidation indicates invalid input data
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUnauthorized indicates authentication failure
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeForbidden indicates insufficient permissions
	ErrorTypeForbidden ErrorType = "forbidden"
	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeMethodNotAllowed indicates an unsupported HTTP method
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"
	// ErrorTypeRateLimited indicates a client exceeded its request budget
	ErrorTypeRateLimited ErrorType = "rate_limited"
	// ErrorTypeExternal indicates an external service error
	ErrorTypeExternal ErrorType = "external"
	// ErrorTypeExpired indicates an item whose expiry has passed
	ErrorTypeExpired ErrorType = "expired"
	// ErrorTypeTooFar indicates a failed distance check
	ErrorTypeTooFar ErrorType = "too_far"
	// ErrorTypeInvalidWinner indicates a battle winner outside the participants
	ErrorTypeInvalidWinner ErrorType = "invalid_winner"
	// ErrorTypeCannotUse indicates an item effect that could not be applied
	ErrorTypeCannotUse ErrorType = "cannot_use"
)

// AppError is the base error type for application errors
type AppError struct {
	Type    ErrorType
	Message string
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

// New creates an error of the given type
func New(errorType ErrorType, message string) error {
	return &AppError{
		Type:    errorType,
		Message: message,
	}
}

// Wrap wraps an error with the given type, keeping the cause for errors.Is
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{
		Type:    errorType,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a not found error
func NotFound(message string) error {
	return New(ErrorTypeNotFound, message)
}

// NotFoundf creates a not found error with formatting
func NotFoundf(format string, args ...interface{}) error {
	return New(ErrorTypeNotFound, fmt.Sprintf(format, args...))
}

// Validation creates a validation error
func Validation(message string) error {
	return New(ErrorTypeValidation, message)
}

// Validationf creates a validation error with formatting
func Validationf(format string, args ...interface{}) error {
	return New(ErrorTypeValidation, fmt.Sprintf(format, args...))
}

// WrapValidation wraps an error as a validation error
func WrapValidation(message string, err error) error {
	return Wrap(ErrorTypeValidation, message, err)
}

// Conflict creates a conflict error
func Conflict(message string) error {
	return New(ErrorTypeConflict, message)
}

// Conflictf creates a conflict error with formatting
func Conflictf(format string, args ...interface{}) error {
	return New(ErrorTypeConflict, fmt.Sprintf(format, args...))
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return Wrap(ErrorTypeInternal, message, err)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) error {
	return New(ErrorTypeUnauthorized, message)
}

// Forbidden creates a forbidden error
func Forbidden(message string) error {
	return New(ErrorTypeForbidden, message)
}

// MethodNotAllowed creates a method not allowed error
func MethodNotAllowed(method string) error {
	return New(ErrorTypeMethodNotAllowed, fmt.Sprintf("method %s not allowed", method))
}

// WrapExternal wraps an error as an external service error
func WrapExternal(message string, err error) error {
	return Wrap(ErrorTypeExternal, message, err)
}

// GetType returns the error type of an error
func GetType(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err carries the given error type
func Is(err error, errorType ErrorType) bool {
	return err != nil && GetType(err) == errorType
}

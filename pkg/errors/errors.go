package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind classifies the failure modes seen when talking to the IPS backend
type Kind string

const (
	// KindNetwork indicates the server never produced a response
	KindNetwork Kind = "NETWORK"

	// KindUnauthorized indicates a 401 that survived (or bypassed) the refresh protocol
	KindUnauthorized Kind = "UNAUTHORIZED"

	// KindForbidden indicates a 403
	KindForbidden Kind = "FORBIDDEN"

	// KindServer indicates a 5xx response
	KindServer Kind = "SERVER"

	// KindValidation indicates a non-401/403 4xx, usually carrying field errors
	KindValidation Kind = "VALIDATION"

	// KindRefresh indicates the refresh endpoint rejected or was unreachable
	KindRefresh Kind = "REFRESH"

	// KindInternal indicates a local failure (encoding, bad arguments)
	KindInternal Kind = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Kind       Kind
	Message    string
	StatusCode int
	// Fields carries server-provided field-level validation errors verbatim
	Fields json.RawMessage
	Err    error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
// Callers use this to distinguish "server unreachable" from "session is gone".
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// NewNetworkError creates an error for requests that got no response
func NewNetworkError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindNetwork,
		Message: message,
		Err:     err,
	}
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Kind:       KindUnauthorized,
		Message:    message,
		StatusCode: 401,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Kind:       KindForbidden,
		Message:    message,
		StatusCode: 403,
	}
}

// NewServerError creates an error for 5xx responses
func NewServerError(statusCode int, message string) *AppError {
	return &AppError{
		Kind:       KindServer,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewValidationError creates a validation error with optional field errors
func NewValidationError(statusCode int, message string, fields json.RawMessage) *AppError {
	return &AppError{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: statusCode,
		Fields:     fields,
	}
}

// NewRefreshError creates an error for a failed token refresh
func NewRefreshError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindRefresh,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: message,
		Err:     err,
	}
}

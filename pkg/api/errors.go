package api

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of an SDK error.
type ErrorType string

const (
	// ErrorTypeValidation is a client-side request validation failure.
	// No network activity has occurred when one of these is returned.
	ErrorTypeValidation ErrorType = "invalid_request_error"

	// ErrorTypeAPI is an error envelope the backend embedded inside a
	// response frame. The Message carries the serialized backend payload.
	ErrorTypeAPI ErrorType = "api_error"

	// ErrorTypeTransport is a connection-level failure: dial error,
	// timeout, dropped connection, non-2xx HTTP status.
	ErrorTypeTransport ErrorType = "connection_error"
)

// Error represents a structured SDK error with type, param, and message.
type Error struct {
	Type    ErrorType `json:"type"`
	Param   string    `json:"param,omitempty"`
	Message string    `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param: %s)", e.Type, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse wraps an Error for JSON serialization as the top-level
// error response shape used by OpenAI-compatible tooling.
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// NewValidationError creates an Error for invalid request parameters.
func NewValidationError(param, message string) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Param:   param,
		Message: message,
	}
}

// NewAPIError creates an Error carrying a backend error payload.
func NewAPIError(message string) *Error {
	return &Error{
		Type:    ErrorTypeAPI,
		Message: message,
	}
}

// NewTransportError creates an Error for a connection-level failure.
func NewTransportError(message string) *Error {
	return &Error{
		Type:    ErrorTypeTransport,
		Message: message,
	}
}

// isType reports whether err is (or wraps) an *Error of the given type.
func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsValidationError reports whether err is a client-side validation error.
func IsValidationError(err error) bool { return isType(err, ErrorTypeValidation) }

// IsAPIError reports whether err is a backend-embedded protocol error.
func IsAPIError(err error) bool { return isType(err, ErrorTypeAPI) }

// IsTransportError reports whether err is a connection-level failure.
func IsTransportError(err error) bool { return isType(err, ErrorTypeTransport) }

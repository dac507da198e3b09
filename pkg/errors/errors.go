package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the categories of failures an endpoint can report
type ErrorType int

const (
	ErrorTypeInvalidParameter ErrorType = iota
	ErrorTypeMissingParameter
	ErrorTypeOutOfRange
	ErrorTypeMalformedBody
	ErrorTypeMalformedCredentials
	ErrorTypeInvalidCredentials
	ErrorTypeNotFound
	ErrorTypeBodyTooLarge
	ErrorTypeUnsupportedEncoding
)

// Error represents a structured httpbin error
type Error struct {
	Type    ErrorType
	Message string
	Context string
	Err     error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %s)", e.Message, e.Context)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error
func NewError(errType ErrorType, message, context string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: context,
	}
}

// Wrap creates a new Error carrying cause
func Wrap(errType ErrorType, message, context string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Context: context,
		Err:     cause,
	}
}

// InvalidParameter reports a parameter that could not be parsed
func InvalidParameter(name, value string, cause error) *Error {
	return Wrap(ErrorTypeInvalidParameter,
		fmt.Sprintf("invalid %s: %q", name, value), name, cause)
}

// MissingParameter reports a required parameter that was not supplied
func MissingParameter(name string) *Error {
	return NewError(ErrorTypeMissingParameter,
		"missing required parameter: "+name, name)
}

// OutOfRange reports a parameter outside its accepted range
func OutOfRange(name, message string) *Error {
	return NewError(ErrorTypeOutOfRange, message, name)
}

// TypeOf returns the ErrorType of err and whether err is an *Error
func TypeOf(err error) (ErrorType, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type, true
	}
	return 0, false
}

// Is reports whether err is an *Error of the given type
func Is(err error, errType ErrorType) bool {
	t, ok := TypeOf(err)
	return ok && t == errType
}

// StatusCode maps an error to the HTTP status an endpoint should answer with.
// Credential failures map to 401; endpoints that hide themselves override it.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	t, ok := TypeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch t {
	case ErrorTypeInvalidParameter, ErrorTypeMissingParameter,
		ErrorTypeOutOfRange, ErrorTypeMalformedBody:
		return http.StatusBadRequest
	case ErrorTypeMalformedCredentials, ErrorTypeInvalidCredentials:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorTypeUnsupportedEncoding:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing message of err
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return http.StatusText(StatusCode(err))
}

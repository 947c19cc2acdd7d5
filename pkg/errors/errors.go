package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for the conditions this service reports.
var (
	ErrValidation       = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound         = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrNotAuthorized    = New("NOT_AUTHORIZED", http.StatusUnauthorized, "you're not authorized, get your own info or login as admin")
	ErrForbidden        = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrBadCredentials   = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "login failed")
	ErrBanned           = New("SESSION_BANNED", http.StatusForbidden, "too many failed logins, you are banned")
	ErrLocalOnly        = New("LOCAL_ONLY", http.StatusForbidden, "admin access is restricted to localhost")
	ErrDeviceLinked     = New("DEVICE_ALREADY_LINKED", http.StatusForbidden, "device is already registered, new registration is forbidden")
	ErrMustRegister     = New("MUST_REGISTER", http.StatusForbidden, "you must register first")
	ErrNotRegistered    = New("NOT_REGISTERED", http.StatusBadRequest, "device is not registered")
	ErrNoMeeting        = New("NO_MEETING_IN_PROGRESS", http.StatusNotFound, "no in progress meeting")
	ErrUnresolvedDevice = New("UNRESOLVED_DEVICE", http.StatusBadRequest, "could not resolve a device address for this caller")
	ErrBadFormat        = New("BAD_FORMAT", http.StatusBadRequest, "unsupported file format")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

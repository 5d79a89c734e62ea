// Package apperr defines the error taxonomy shared by the tally client.
// Validation errors block a request before it is sent, API errors carry the
// server's rejection, and ErrAuth marks credential or token failures.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// FieldError names one rejected field.
type FieldError struct {
	Field   string `json:"path"`
	Message string `json:"msg"`
}

func (f FieldError) String() string {
	if f.Field == "" {
		return f.Message
	}
	return f.Field + ": " + f.Message
}

// ValidationError is raised client-side before any network call.
type ValidationError struct {
	Fields []FieldError
	// Internal is an optional sentinel, e.g. ErrSystemCategory.
	Internal error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	if len(parts) == 0 && e.Internal != nil {
		return e.Internal.Error()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Unwrap returns the internal sentinel for use with errors.Is.
func (e *ValidationError) Unwrap() error { return e.Internal }

// Field returns the message for the named field, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// APIError is a request the server rejected.
type APIError struct {
	Status      int
	Message     string
	FieldErrors []FieldError
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.FieldErrors) > 0 {
		parts := make([]string, 0, len(e.FieldErrors))
		for _, f := range e.FieldErrors {
			parts = append(parts, f.String())
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("api: %s", msg)
}

// Is lets 401 and 403 responses match ErrAuth.
func (e *APIError) Is(target error) bool {
	if target == ErrAuth {
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Sentinels.
var (
	// ErrAuth indicates invalid credentials or an expired or invalid token.
	ErrAuth = errors.New("authentication failed")
	// ErrNotAuthenticated means a command needs a session and there is none.
	ErrNotAuthenticated = errors.New("not logged in (run `tally login`)")
	// ErrSystemCategory is returned when editing or deleting a system category.
	ErrSystemCategory = errors.New("system categories cannot be modified")
)

// SystemCategory builds the ValidationError returned for a system category.
func SystemCategory(name string) *ValidationError {
	return &ValidationError{
		Fields:   []FieldError{{Field: "category", Message: fmt.Sprintf("%q is a system category and cannot be modified", name)}},
		Internal: ErrSystemCategory,
	}
}

// AsValidation unwraps err into a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var v *ValidationError
	ok := errors.As(err, &v)
	return v, ok
}

// AsAPI unwraps err into an APIError.
func AsAPI(err error) (*APIError, bool) {
	var a *APIError
	ok := errors.As(err, &a)
	return a, ok
}

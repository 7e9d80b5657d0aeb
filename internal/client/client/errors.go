package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Every failure leaving the gateway or the services matches
// exactly one of these with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAuthFailure        = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrNetwork            = errors.New("network error")
	ErrDuplicateAccount   = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid registration details")
)

// GatewayError describes a failed backend call.
type GatewayError struct {
	// Op is the gateway operation, e.g. "update_entry".
	Op string
	// Kind is one of the Err* sentinels above.
	Kind error
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Type and Message come from the backend error body when present.
	Type    string
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *GatewayError) Error() string {
	var b strings.Builder
	b.WriteString(strings.ReplaceAll(e.Op, "_", " "))
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Type != "" {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GatewayError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// FieldError is one failed field check.
type FieldError struct {
	Field string
	Rule  string
}

// ValidationError lists the fields that failed input checks. It is raised
// before any network call and matches ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		switch f.Rule {
		case "required":
			parts = append(parts, f.Field+" is required")
		case "iso8601":
			parts = append(parts, f.Field+" must be an ISO-8601 timestamp")
		case "readable":
			parts = append(parts, f.Field+" cannot be read from this device")
		default:
			parts = append(parts, f.Field+" is invalid")
		}
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Kind returns the sentinel err matches, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{
		ErrValidation, ErrNotAuthenticated, ErrAuthFailure, ErrNotFound,
		ErrConflict, ErrDuplicateAccount, ErrInvalidCredentials, ErrNetwork,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// mapError classifies a backend error response. errType is the Appwrite
// error type from the response body and may be empty.
func mapError(op string, status int, errType string) error {
	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return ErrNetwork
	case op == OpLogin && (status == http.StatusUnauthorized || status == http.StatusBadRequest):
		return ErrAuthFailure
	case status == http.StatusUnauthorized && errType == "user_invalid_credentials":
		return ErrAuthFailure
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrNotAuthenticated
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict && (errType == "user_already_exists" || errType == "user_email_already_exists"):
		return ErrDuplicateAccount
	case status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusBadRequest && op == OpRegister:
		return ErrInvalidCredentials
	case status == http.StatusBadRequest:
		return ErrValidation
	default:
		return ErrNetwork
	}
}

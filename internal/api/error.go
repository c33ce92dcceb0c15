package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies an API failure for callers that branch on the
// failure class rather than the exact status code.
type ErrorKind string

const (
	// ErrNetwork is a transport-level failure; no HTTP response arrived.
	ErrNetwork ErrorKind = "network"

	// ErrAuth means the session token was missing, invalid, or expired.
	ErrAuth ErrorKind = "auth"

	// ErrValidation means the backend rejected the request payload.
	ErrValidation ErrorKind = "validation"

	// ErrNotFound means the resource does not exist or is inaccessible.
	ErrNotFound ErrorKind = "not_found"

	// ErrForbidden means the actor may not perform this operation on
	// this resource (e.g. editing another user's task).
	ErrForbidden ErrorKind = "forbidden"

	// ErrServer is any other backend failure.
	ErrServer ErrorKind = "server"
)

// genericMessage is the fallback shown when the backend supplies no
// message of its own.
const genericMessage = "request failed, please try again"

// Error is the uniform error shape every client call produces. No
// transport-library error type crosses this boundary.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// Message is backend-supplied when available, generic otherwise.
	Message string

	// StatusCode is the HTTP status, or zero for transport failures.
	StatusCode int

	// ServerError is the backend's machine-readable error label, when given.
	ServerError string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an
// authentication failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == ErrAuth
}

// errorBody is the backend's error response payload.
type errorBody struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode,omitempty"`
	ErrorLabel string `json:"error,omitempty"`
}

// kindForStatus maps an HTTP status code to an error kind.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized:
		return ErrAuth
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusConflict:
		return ErrValidation
	default:
		return ErrServer
	}
}

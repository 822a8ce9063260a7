// Package errors defines error types and utilities for gcs-client
package errors

import (
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Common errors that can occur in gcs-client operations
var (
	// ErrCredentials is returned when service account credentials cannot be
	// loaded or are invalid
	ErrCredentials = errors.New("invalid credentials")

	// ErrInvalidPolicy is returned when a retry policy is constructed or
	// assigned with invalid parameters
	ErrInvalidPolicy = errors.New("invalid retry policy")

	// ErrNotFound is returned when a bucket or object does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest is returned when the storage service rejects a malformed
	// request
	ErrBadRequest = errors.New("bad request")

	// ErrUnauthorized is returned when the request lacks valid authentication
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated account lacks permission
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidRange is returned when a requested byte range cannot be
	// satisfied
	ErrInvalidRange = errors.New("requested range not satisfiable")

	// ErrClosed is returned when reading from or writing to a closed object
	// file
	ErrClosed = errors.New("file is closed")

	// ErrIncomplete is returned when an operation is attempted on a handle
	// that is missing required attributes
	ErrIncomplete = errors.New("handle is incomplete")

	// ErrNotJSON is returned when the storage service responds with a body
	// that cannot be parsed as JSON
	ErrNotJSON = errors.New("response is not JSON")
)

// statusSentinels maps HTTP status codes to the sentinel errors call sites
// branch on with errors.Is.
var statusSentinels = map[int]error{
	http.StatusNotFound:                     ErrNotFound,
	http.StatusBadRequest:                   ErrBadRequest,
	http.StatusUnauthorized:                 ErrUnauthorized,
	http.StatusForbidden:                    ErrForbidden,
	http.StatusRequestedRangeNotSatisfiable: ErrInvalidRange,
}

// transientStatuses are the status codes treated as transient failures worth
// retrying. Everything else surfaces immediately.
var transientStatuses = map[int]bool{
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// HTTPError represents a non-OK response from the storage service.
type HTTPError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gcs: HTTP error %d", e.StatusCode)
	}
	return fmt.Sprintf("gcs: HTTP error %d: %s", e.StatusCode, e.Message)
}

// Is maps the status code to the matching sentinel error so callers can use
// errors.Is(err, ErrNotFound) without inspecting status codes.
func (e *HTTPError) Is(target error) bool {
	sentinel, ok := statusSentinels[e.StatusCode]
	return ok && target == sentinel
}

// Transient reports whether the error is a transient server-side failure.
func (e *HTTPError) Transient() bool {
	return transientStatuses[e.StatusCode]
}

// FromStatus creates an HTTPError for the given response status code.
func FromStatus(statusCode int, message string) error {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// IsRetryable reports whether err is a transient failure that may succeed on
// a later attempt: a transient HTTP status (408, 429 or 5xx-equivalent) or a
// network timeout. Authentication failures, not-found and malformed requests
// are never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// IsNotFound checks if an error indicates a missing bucket or object
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StatusCode returns the HTTP status code carried by err, or 0 when err does
// not wrap an HTTPError.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHTTPErrorMessage tests HTTPError message formatting
func TestHTTPErrorMessage(t *testing.T) {
	t.Run("With message", func(t *testing.T) {
		err := FromStatus(http.StatusServiceUnavailable, "backend unavailable")
		assert.Equal(t, "gcs: HTTP error 503: backend unavailable", err.Error())
	})

	t.Run("Without message", func(t *testing.T) {
		err := FromStatus(http.StatusNotFound, "")
		assert.Equal(t, "gcs: HTTP error 404", err.Error())
	})
}

// TestSentinelMapping tests that status codes map to the expected sentinels
func TestSentinelMapping(t *testing.T) {
	tests := []struct {
		sentinel   error
		name       string
		statusCode int
	}{
		{name: "NotFound", statusCode: http.StatusNotFound, sentinel: ErrNotFound},
		{name: "BadRequest", statusCode: http.StatusBadRequest, sentinel: ErrBadRequest},
		{name: "Unauthorized", statusCode: http.StatusUnauthorized, sentinel: ErrUnauthorized},
		{name: "Forbidden", statusCode: http.StatusForbidden, sentinel: ErrForbidden},
		{name: "InvalidRange", statusCode: http.StatusRequestedRangeNotSatisfiable, sentinel: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.statusCode, "detail")
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}

	t.Run("Wrapped errors still match", func(t *testing.T) {
		err := fmt.Errorf("get bucket: %w", FromStatus(http.StatusNotFound, ""))
		assert.True(t, IsNotFound(err))
	})

	t.Run("Unrelated sentinel does not match", func(t *testing.T) {
		err := FromStatus(http.StatusNotFound, "")
		assert.False(t, errors.Is(err, ErrForbidden))
	})
}

// TestIsRetryable tests the transient vs fatal classification
func TestIsRetryable(t *testing.T) {
	retryable := []int{408, 429, 500, 502, 503, 504}
	for _, code := range retryable {
		t.Run(fmt.Sprintf("Status %d is retryable", code), func(t *testing.T) {
			assert.True(t, IsRetryable(FromStatus(code, "")))
		})
	}

	fatal := []int{400, 401, 403, 404, 409, 412, 416}
	for _, code := range fatal {
		t.Run(fmt.Sprintf("Status %d is fatal", code), func(t *testing.T) {
			assert.False(t, IsRetryable(FromStatus(code, "")))
		})
	}

	t.Run("Nil error", func(t *testing.T) {
		assert.False(t, IsRetryable(nil))
	})

	t.Run("Plain error", func(t *testing.T) {
		assert.False(t, IsRetryable(errors.New("boom")))
	})

	t.Run("Wrapped transient error", func(t *testing.T) {
		err := fmt.Errorf("list objects: %w", FromStatus(http.StatusServiceUnavailable, ""))
		assert.True(t, IsRetryable(err))
	})
}

// TestStatusCode tests extraction of status codes from wrapped errors
func TestStatusCode(t *testing.T) {
	require.Equal(t, 503, StatusCode(FromStatus(503, "")))
	require.Equal(t, 404, StatusCode(fmt.Errorf("wrapped: %w", FromStatus(404, ""))))
	require.Equal(t, 0, StatusCode(errors.New("no status")))
	require.Equal(t, 0, StatusCode(nil))
}

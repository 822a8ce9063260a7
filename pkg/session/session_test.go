package session

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
)

// newTestSession returns a session pointed at a httptest server with a static
// token, plus the server itself.
func newTestSession(t *testing.T, handler http.HandlerFunc) (*Session, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess, err := NewSession(&Config{
		Endpoint:    server.URL,
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
	})
	require.NoError(t, err)
	return sess, server
}

// TestDefaultConfig tests the DefaultConfig function
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Nil(t, cfg.RetryPolicy)
	assert.Empty(t, cfg.KeyFile)
}

// TestConfigValidate tests chunk size and retry policy validation
func TestConfigValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, DefaultConfig().Validate())
	})

	t.Run("Chunk size not a block multiple", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.ChunkSize = 1000
		assert.Error(t, cfg.Validate())
	})

	t.Run("Invalid retry policy", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.RetryPolicy = &retry.Policy{MaxRetries: -1, InitialDelay: time.Second, MaxBackoff: time.Second}
		assert.ErrorIs(t, cfg.Validate(), gcserrors.ErrInvalidPolicy)
	})
}

// TestNewSessionRequiresCredentials tests that a session needs a key file or
// token source
func TestNewSessionRequiresCredentials(t *testing.T) {
	_, err := NewSession(&Config{})
	assert.ErrorIs(t, err, gcserrors.ErrCredentials)
}

// TestSessionRetryOverride tests the retry slot handed to new handles
func TestSessionRetryOverride(t *testing.T) {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "t"})

	t.Run("No policy defers", func(t *testing.T) {
		sess, err := NewSession(&Config{TokenSource: tokens})
		require.NoError(t, err)
		assert.False(t, sess.RetryOverride().IsExplicit())
	})

	t.Run("Configured policy is explicit", func(t *testing.T) {
		p, err := retry.NewPolicy(2, time.Second, 4*time.Second, false)
		require.NoError(t, err)

		sess, err := NewSession(&Config{TokenSource: tokens, RetryPolicy: p})
		require.NoError(t, err)

		ov := sess.RetryOverride()
		assert.True(t, ov.IsExplicit())
		assert.Equal(t, 2, ov.Resolve().MaxRetries)
	})
}

// TestDoRequestShape tests URL building, auth header and parameter encoding
func TestDoRequestShape(t *testing.T) {
	var got *http.Request
	sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"kind":"storage#bucket"}`))
	})

	resp, err := sess.Do(context.Background(), &Request{
		Path: "/storage/v1/b/my-bucket",
		Params: url.Values{
			"projection": {"noAcl"},
			"prefix":     {""},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/storage/v1/b/my-bucket", got.URL.Path)
	assert.Equal(t, "noAcl", got.URL.Query().Get("projection"))
	assert.False(t, got.URL.Query().Has("prefix"), "empty params stay off the wire")
	assert.Equal(t, "Bearer test-token", got.Header.Get("Authorization"))

	var body map[string]string
	require.NoError(t, resp.JSON(&body))
	assert.Equal(t, "storage#bucket", body["kind"])
}

// TestDoJSONBody tests JSON body encoding and content type
func TestDoJSONBody(t *testing.T) {
	var contentType, body string
	sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := sess.Do(context.Background(), &Request{
		Method: http.MethodPost,
		Path:   "/storage/v1/b",
		Body:   map[string]string{"name": "new-bucket"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.JSONEq(t, `{"name":"new-bucket"}`, body)
}

// TestDoStatusMapping tests that non-OK statuses become typed errors with the
// service message extracted
func TestDoStatusMapping(t *testing.T) {
	t.Run("Error envelope", func(t *testing.T) {
		sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"bucket gone"}}`))
		})

		_, err := sess.Do(context.Background(), &Request{Path: "/storage/v1/b/x"})
		require.Error(t, err)
		assert.True(t, gcserrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "bucket gone")
	})

	t.Run("Transient status is retryable", func(t *testing.T) {
		sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := sess.Do(context.Background(), &Request{Path: "/storage/v1/b/x"})
		assert.True(t, gcserrors.IsRetryable(err))
	})

	t.Run("Custom accepted statuses", func(t *testing.T) {
		sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		resp, err := sess.Do(context.Background(), &Request{
			Method: http.MethodDelete,
			Path:   "/storage/v1/b/x",
			OK:     []int{http.StatusNoContent},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

// TestDoAbsoluteURL tests that Request.URL bypasses the endpoint
func TestDoAbsoluteURL(t *testing.T) {
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upload.Close()

	sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("endpoint server should not be hit")
	})

	_, err := sess.Do(context.Background(), &Request{URL: upload.URL + "/upload/session"})
	assert.NoError(t, err)
}

// TestDoContextCancellation tests that a cancelled context aborts the call
func TestDoContextCancellation(t *testing.T) {
	sess, _ := newTestSession(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sess.Do(ctx, &Request{Path: "/storage/v1/b"})
	assert.ErrorIs(t, err, context.Canceled)
}

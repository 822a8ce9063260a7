package storage

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// newTestClient returns a client whose session points at a httptest server.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess, err := session.NewSession(&session.Config{
		Endpoint:    server.URL,
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"}),
	})
	require.NoError(t, err)
	return NewClient(sess)
}

// fastPolicy returns a policy with millisecond delays so retry loops finish
// quickly.
func fastPolicy(t *testing.T, maxRetries int) *retry.Policy {
	t.Helper()
	p, err := retry.NewPolicy(maxRetries, time.Millisecond, 4*time.Millisecond, false)
	require.NoError(t, err)
	return p
}

// resetDefault restores the process default retry policy after a test.
func resetDefault(t *testing.T) {
	t.Helper()
	t.Cleanup(func() { require.NoError(t, retry.SetDefault(retry.DefaultPolicy())) })
}

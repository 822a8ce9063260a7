package gcsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// TestNew tests client construction through the package facade
func TestNew(t *testing.T) {
	t.Run("Requires credentials", func(t *testing.T) {
		_, err := New(&session.Config{})
		assert.ErrorIs(t, err, gcserrors.ErrCredentials)
	})

	t.Run("Token source", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer facade-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"name":"b","location":"US"}`))
		}))
		defer server.Close()

		client, err := New(&Config{
			Endpoint:    server.URL,
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "facade-token"}),
		})
		require.NoError(t, err)

		attrs, err := client.Bucket("b").Attrs(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "US", attrs.Location)
	})

	t.Run("Missing key file", func(t *testing.T) {
		_, err := NewFromKeyFile("/does/not/exist.json")
		assert.Error(t, err)
	})
}

// TestRetryPolicyFacade tests the re-exported retry policy helpers
func TestRetryPolicyFacade(t *testing.T) {
	policy, err := NewRetryPolicy(3, time.Second, 8*time.Second, true)
	require.NoError(t, err)
	assert.Equal(t, 3, policy.MaxRetries)

	_, err = NewRetryPolicy(3, -time.Second, 8*time.Second, true)
	assert.ErrorIs(t, err, gcserrors.ErrInvalidPolicy)

	assert.Equal(t, retry.DefaultMaxRetries, DefaultRetryPolicy().MaxRetries)

	t.Cleanup(func() { require.NoError(t, SetDefaultRetryPolicy(DefaultRetryPolicy())) })
	require.NoError(t, SetDefaultRetryPolicy(policy))
	assert.Equal(t, 3, retry.Default().MaxRetries)
}

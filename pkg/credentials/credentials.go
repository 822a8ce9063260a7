// Package credentials loads Google service-account credentials for Cloud
// Storage access.
//
// Keys are obtained from the Google Developers Console: create a service
// account and download its private key, preferably as a JSON file. P12-style
// keys converted to PEM are also accepted, but need the service account's
// email address supplied through WithEmail.
package credentials

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
)

// Scope identifies the level of access requested for the storage service.
type Scope string

const (
	// ScopeReader lets a user download object data and list bucket contents.
	ScopeReader Scope = "READER"

	// ScopeWriter lets a user list, create, overwrite and delete objects in a
	// bucket.
	ScopeWriter Scope = "WRITER"

	// ScopeOwner adds read/write access to bucket and object metadata,
	// including ACLs.
	ScopeOwner Scope = "OWNER"

	// ScopeCloud grants full access to all Google Cloud Platform resources
	// visible to the account.
	ScopeCloud Scope = "CLOUD"
)

const scopeBaseURL = "https://www.googleapis.com/auth/"

var scopeURLs = map[Scope]string{
	ScopeReader: scopeBaseURL + "devstorage.read_only",
	ScopeWriter: scopeBaseURL + "devstorage.read_write",
	ScopeOwner:  scopeBaseURL + "devstorage.full_control",
	ScopeCloud:  scopeBaseURL + "cloud-platform",
}

// Credentials holds service-account credentials used for all storage
// operations.
type Credentials struct {
	conf  *jwt.Config
	ts    oauth2.TokenSource
	Email string
	scope Scope
}

// Option customizes credential loading.
type Option func(*options)

type options struct {
	scope Scope
	email string
}

// WithScope selects the access scope the credentials are granted. Defaults
// to ScopeOwner.
func WithScope(s Scope) Option {
	return func(o *options) { o.scope = s }
}

// WithEmail supplies the service account email for PEM private keys. It is
// ignored for JSON keys, which carry the email themselves.
func WithEmail(email string) Option {
	return func(o *options) { o.email = email }
}

// New loads service-account credentials from a key file.
func New(keyFile string, opts ...Option) (*Credentials, error) {
	o := options{scope: ScopeOwner}
	for _, opt := range opts {
		opt(&o)
	}

	scopeURL, ok := scopeURLs[o.scope]
	if !ok {
		return nil, fmt.Errorf("%w: unknown scope %q", gcserrors.ErrCredentials, o.scope)
	}

	keyData, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read private key file %s: %v",
			gcserrors.ErrCredentials, keyFile, err)
	}

	conf, jsonErr := google.JWTConfigFromJSON(keyData, scopeURL)
	if jsonErr != nil {
		// Not a JSON key. Treat the file as a PEM private key, which needs
		// the account email supplied by the caller.
		if o.email == "" {
			return nil, fmt.Errorf("%w: non JSON private key needs an email address",
				gcserrors.ErrCredentials)
		}
		conf = &jwt.Config{
			Email:      o.email,
			PrivateKey: keyData,
			Scopes:     []string{scopeURL},
			TokenURL:   google.JWTTokenURL,
		}
	}

	return &Credentials{
		conf:  conf,
		Email: conf.Email,
		scope: o.scope,
	}, nil
}

// Scope returns the access scope the credentials were loaded with.
func (c *Credentials) Scope() Scope {
	return c.scope
}

// TokenSource returns a caching token source that mints and refreshes access
// tokens as needed.
func (c *Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.ts == nil {
		c.ts = oauth2.ReuseTokenSource(nil, c.conf.TokenSource(ctx))
	}
	return c.ts
}

// Client returns an HTTP client that authenticates every request with these
// credentials.
func (c *Credentials) Client(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource(ctx))
}

// Authorization returns the value for the Authorization header of a storage
// request, refreshing the access token when expired.
func (c *Credentials) Authorization(ctx context.Context) (string, error) {
	tok, err := c.TokenSource(ctx).Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", gcserrors.ErrCredentials, err)
	}
	return "Bearer " + tok.AccessToken, nil
}

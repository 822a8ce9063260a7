// Package gcsclient is a client library for the Google Cloud Storage JSON
// API with configurable retries.
//
// Import path:
//
//	import "github.com/Akrog/gcs-client"
//
// Implementation lives in `pkg/` so the repo root stays minimal.
package gcsclient

import (
	"time"

	"github.com/Akrog/gcs-client/pkg/credentials"
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
	"github.com/Akrog/gcs-client/pkg/storage"
)

type (
	Client  = storage.Client
	Project = storage.Project
	Bucket  = storage.Bucket
	Object  = storage.Object
	Prefix  = storage.Prefix

	BucketAttrs = storage.BucketAttrs
	ObjectAttrs = storage.ObjectAttrs

	BucketIterator = storage.BucketIterator
	ObjectIterator = storage.ObjectIterator
	ObjectEntry    = storage.ObjectEntry

	Query               = storage.Query
	Conditions          = storage.Conditions
	DeleteConditions    = storage.DeleteConditions
	BucketListOptions   = storage.BucketListOptions
	CreateBucketOptions = storage.CreateBucketOptions

	Reader = storage.Reader
	Writer = storage.Writer

	// Re-export types for convenience.
	Config      = session.Config
	RetryPolicy = retry.Policy
	Credentials = credentials.Credentials
	Scope       = credentials.Scope
)

// Re-export authorization scopes for convenience.
const (
	ScopeReader = credentials.ScopeReader
	ScopeWriter = credentials.ScopeWriter
	ScopeOwner  = credentials.ScopeOwner
	ScopeCloud  = credentials.ScopeCloud
)

// Re-export access control and storage class constants for convenience.
const (
	ACLPrivate        = storage.ACLPrivate
	ACLProjectPrivate = storage.ACLProjectPrivate
	ACLPublicRead     = storage.ACLPublicRead

	StorageStandard = storage.StorageStandard
	StorageNearline = storage.StorageNearline
)

// New creates a storage client from the given configuration. A zero-value
// config is not usable; it needs at least a key file or a token source. See
// session.DefaultConfig for the defaults the rest of the fields get.
func New(config *session.Config) (*storage.Client, error) {
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, err
	}
	return storage.NewClient(sess), nil
}

// NewFromKeyFile creates a storage client authenticated with a service
// account JSON key file and otherwise default configuration.
func NewFromKeyFile(keyFile string) (*storage.Client, error) {
	return New(&session.Config{KeyFile: keyFile})
}

// NewFromConfigFile creates a storage client from a YAML configuration file.
func NewFromConfigFile(path string) (*storage.Client, error) {
	config, err := session.LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	return New(config)
}

// NewRetryPolicy builds a validated retry policy.
func NewRetryPolicy(maxRetries int, initialDelay, maxBackoff time.Duration, randomize bool) (*retry.Policy, error) {
	return retry.NewPolicy(maxRetries, initialDelay, maxBackoff, randomize)
}

// DefaultRetryPolicy returns a copy of the built-in retry defaults.
func DefaultRetryPolicy() *retry.Policy {
	return retry.DefaultPolicy()
}

// SetDefaultRetryPolicy replaces the process-wide retry policy used by
// handles without an explicit one. Passing nil disables retries by default.
func SetDefaultRetryPolicy(policy *retry.Policy) error {
	return retry.SetDefault(policy)
}

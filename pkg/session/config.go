package session

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"github.com/Akrog/gcs-client/pkg/credentials"
	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
)

const (
	// DefaultEndpoint is the base URL of the Google Cloud Storage JSON API.
	DefaultEndpoint = "https://www.googleapis.com"

	// BlockSizeMultiple is the granularity the storage service requires for
	// non-final resumable upload chunks.
	BlockSizeMultiple = 256 * 1024

	// DefaultChunkSize is the payload size used for object reads and writes
	// when the configuration does not override it.
	DefaultChunkSize = 4 * BlockSizeMultiple

	// DefaultTimeout bounds a single HTTP round-trip, not a whole operation.
	DefaultTimeout = 30 * time.Second
)

// Config holds the configuration for a storage session.
type Config struct {
	// TokenSource overrides key-file credentials entirely. Mainly for tests
	// and embedders with their own auth plumbing.
	TokenSource oauth2.TokenSource `json:"-" yaml:"-"`

	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client `json:"-" yaml:"-"`

	// RetryPolicy is the explicit retry policy for handles created from this
	// session. Nil defers to the process-wide default; retry.Disabled() turns
	// retries off explicitly.
	RetryPolicy *retry.Policy

	// KeyFile is the path of the service-account key (JSON or PEM).
	KeyFile string

	// Email is the service-account email, required for PEM keys only.
	Email string

	// Scope is the access scope to request. Defaults to OWNER.
	Scope credentials.Scope

	// Endpoint is the base URL of the storage service.
	Endpoint string

	// UserAgent is sent with every request.
	UserAgent string

	// ChunkSize is the object I/O payload size in bytes. Must be a multiple
	// of BlockSizeMultiple.
	ChunkSize int

	// Timeout bounds each HTTP round-trip.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Endpoint:  DefaultEndpoint,
		Scope:     credentials.ScopeOwner,
		UserAgent: "gcs-client/1.0",
		ChunkSize: DefaultChunkSize,
		Timeout:   DefaultTimeout,
	}
}

// Validate checks configuration invariants that cannot wait until first use.
func (c *Config) Validate() error {
	if c.ChunkSize%BlockSizeMultiple != 0 {
		return fmt.Errorf("chunk size %d must be a multiple of %d", c.ChunkSize, BlockSizeMultiple)
	}
	if c.RetryPolicy != nil {
		if err := c.RetryPolicy.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// configFile is the YAML shape of a config file. Durations are strings in
// time.ParseDuration format.
type configFile struct {
	KeyFile   string           `yaml:"key_file"`
	Email     string           `yaml:"email"`
	Scope     string           `yaml:"scope"`
	Endpoint  string           `yaml:"endpoint"`
	UserAgent string           `yaml:"user_agent"`
	ChunkSize int              `yaml:"chunk_size"`
	Timeout   string           `yaml:"timeout"`
	Retry     *configFileRetry `yaml:"retry"`
}

type configFileRetry struct {
	MaxRetries   int    `yaml:"max_retries"`
	InitialDelay string `yaml:"initial_delay"`
	MaxBackoff   string `yaml:"max_backoff"`
	Randomize    bool   `yaml:"randomize"`
}

// LoadConfigFile reads a YAML configuration file and merges it over the
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	cfg.KeyFile = cf.KeyFile
	cfg.Email = cf.Email
	if cf.Scope != "" {
		cfg.Scope = credentials.Scope(cf.Scope)
	}
	if cf.Endpoint != "" {
		cfg.Endpoint = cf.Endpoint
	}
	if cf.UserAgent != "" {
		cfg.UserAgent = cf.UserAgent
	}
	if cf.ChunkSize != 0 {
		cfg.ChunkSize = cf.ChunkSize
	}
	if cf.Timeout != "" {
		timeout, err := time.ParseDuration(cf.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", cf.Timeout, err)
		}
		cfg.Timeout = timeout
	}

	if cf.Retry != nil {
		policy, err := parseRetry(cf.Retry)
		if err != nil {
			return nil, err
		}
		cfg.RetryPolicy = policy
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseRetry(cf *configFileRetry) (*retry.Policy, error) {
	if cf.MaxRetries == 0 {
		return retry.Disabled(), nil
	}

	initial, err := time.ParseDuration(cf.InitialDelay)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid initial_delay %q", gcserrors.ErrInvalidPolicy, cf.InitialDelay)
	}
	maxBackoff, err := time.ParseDuration(cf.MaxBackoff)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid max_backoff %q", gcserrors.ErrInvalidPolicy, cf.MaxBackoff)
	}
	return retry.NewPolicy(cf.MaxRetries, initial, maxBackoff, cf.Randomize)
}

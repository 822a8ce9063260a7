// Package session provides credential loading and the authenticated HTTP
// transport used for every Google Cloud Storage JSON API request.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Akrog/gcs-client/pkg/credentials"
	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
)

// Transport is the minimal request surface resource handles need. Session
// implements it; pkg/mocks provides a test double.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Request describes one JSON API call.
type Request struct {
	// Body is JSON-encoded into the request when non-nil.
	Body any

	// RawBody carries an opaque payload (object data). Mutually exclusive
	// with Body.
	RawBody io.Reader

	// Header holds extra headers; Authorization and User-Agent are added by
	// the session.
	Header http.Header

	// Params are encoded as URL query parameters.
	Params url.Values

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Path is the request path under the session endpoint, already escaped.
	Path string

	// URL is an absolute URL overriding endpoint+Path, used for resumable
	// upload sessions which live on a service-assigned URL.
	URL string

	// OK lists the status codes accepted as success. Defaults to 200.
	OK []int
}

// Response is the outcome of a successful request.
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// JSON decodes the response body.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", gcserrors.ErrNotJSON, err)
	}
	return nil
}

// Session owns the authenticated HTTP client and base endpoint. It issues
// single requests; retry loops live with the operations that own them.
type Session struct {
	config   *Config
	client   *http.Client
	tokens   oauth2.TokenSource
	endpoint string
}

// NewSession creates a session from the given configuration. Callers must
// fill in either KeyFile or TokenSource.
func NewSession(cfg *Config) (*Session, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Scope == "" {
		cfg.Scope = credentials.ScopeOwner
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tokens := cfg.TokenSource
	if tokens == nil {
		if cfg.KeyFile == "" {
			return nil, fmt.Errorf("%w: no key file or token source configured", gcserrors.ErrCredentials)
		}
		creds, err := credentials.New(cfg.KeyFile,
			credentials.WithScope(cfg.Scope),
			credentials.WithEmail(cfg.Email))
		if err != nil {
			return nil, err
		}
		tokens = creds.TokenSource(context.Background())
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Session{
		config:   cfg,
		client:   client,
		tokens:   tokens,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
	}, nil
}

// Config returns the session configuration.
func (s *Session) Config() *Config {
	return s.config
}

// ChunkSize returns the configured object I/O payload size.
func (s *Session) ChunkSize() int {
	return s.config.ChunkSize
}

// RetryOverride returns the per-handle retry slot handles created from this
// session start with: explicit when the config pins a policy, otherwise
// deferred to the process default.
func (s *Session) RetryOverride() retry.Override {
	if s.config.RetryPolicy != nil {
		return retry.Explicit(s.config.RetryPolicy)
	}
	return retry.Deferred()
}

// Do performs one JSON API request: builds the URL, attaches authentication,
// sends the request and maps non-OK statuses to typed errors. It never
// retries; callers wrap it in retry.Do with their effective policy.
func (s *Session) Do(ctx context.Context, req *Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := req.URL
	if target == "" {
		target = s.endpoint + req.Path
	}
	if encoded := encodeParams(req.Params); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}

	body, contentType, err := requestBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, values := range req.Header {
		httpReq.Header[key] = values
	}
	if contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if s.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", s.config.UserAgent)
	}

	token, err := s.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", gcserrors.ErrCredentials, err)
	}
	token.SetAuthHeader(httpReq)

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, req.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !statusOK(httpResp.StatusCode, req.OK) {
		return nil, gcserrors.FromStatus(httpResp.StatusCode, errorMessage(data))
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func requestBody(req *Request) (io.Reader, string, error) {
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		return bytes.NewReader(encoded), "application/json", nil
	}
	return req.RawBody, "", nil
}

// encodeParams drops empty values so optional parameters stay off the wire.
func encodeParams(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	filtered := url.Values{}
	for key, values := range params {
		for _, v := range values {
			if v != "" {
				filtered.Add(key, v)
			}
		}
	}
	return filtered.Encode()
}

func statusOK(status int, ok []int) bool {
	if len(ok) == 0 {
		return status == http.StatusOK
	}
	for _, code := range ok {
		if status == code {
			return true
		}
	}
	return false
}

// apiError is the error envelope the JSON API wraps failures in.
type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// errorMessage extracts the service's error message, falling back to the raw
// body.
func errorMessage(body []byte) string {
	var envelope apiError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(body))
}

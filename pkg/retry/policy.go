// Package retry implements the truncated exponential backoff policy used for
// communications with Google Cloud Storage.
//
// A Policy controls how many times a failed transient operation is retried
// and how long to wait between attempts. The delay before retry n (1-indexed)
// is min(InitialDelay * 2^(n-1), MaxBackoff). With Randomize enabled the
// realized delay is drawn uniformly from [0, delay] (full jitter), which
// keeps concurrent clients from retrying in synchronized waves.
//
// A process-wide default policy is consulted by every handle that has not
// been given an explicit policy of its own; see Default and SetDefault.
package retry

import (
	"fmt"
	"math"
	"time"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
)

// Baseline for the process-wide default policy.
const (
	DefaultMaxRetries   = 5
	DefaultInitialDelay = 1 * time.Second
	DefaultMaxBackoff   = 32 * time.Second
)

// Policy defines truncated exponential backoff settings for retryable
// storage operations.
type Policy struct {
	// MaxRetries is the number of retry attempts after the first failure.
	// Zero disables retries entirely.
	MaxRetries int
	// InitialDelay is the base delay before the first retry.
	InitialDelay time.Duration
	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff time.Duration
	// Randomize draws each realized delay uniformly from [0, delay] to avoid
	// thundering herds.
	Randomize bool
}

// NewPolicy creates a validated retry policy.
func NewPolicy(maxRetries int, initialDelay, maxBackoff time.Duration, randomize bool) (*Policy, error) {
	p := &Policy{
		MaxRetries:   maxRetries,
		InitialDelay: initialDelay,
		MaxBackoff:   maxBackoff,
		Randomize:    randomize,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPolicy returns the documented baseline: 5 retries, 1s initial delay,
// 32s maximum backoff, jitter enabled.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		MaxBackoff:   DefaultMaxBackoff,
		Randomize:    true,
	}
}

// Disabled returns a policy that never retries. Assigning it to a handle is
// an explicit choice, distinct from clearing the handle back to the process
// default.
func Disabled() *Policy {
	return &Policy{
		MaxRetries:   0,
		InitialDelay: DefaultInitialDelay,
		MaxBackoff:   DefaultMaxBackoff,
	}
}

// Validate reports a configuration error instead of deferring it to first
// use. Rules: MaxRetries >= 0, InitialDelay > 0, MaxBackoff >= InitialDelay.
func (p *Policy) Validate() error {
	if p == nil {
		return nil
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: negative retry count %d", gcserrors.ErrInvalidPolicy, p.MaxRetries)
	}
	if p.InitialDelay <= 0 {
		return fmt.Errorf("%w: non-positive initial delay %s", gcserrors.ErrInvalidPolicy, p.InitialDelay)
	}
	if p.MaxBackoff < p.InitialDelay {
		return fmt.Errorf("%w: max backoff %s smaller than initial delay %s",
			gcserrors.ErrInvalidPolicy, p.MaxBackoff, p.InitialDelay)
	}
	return nil
}

// IsDisabled reports whether the policy performs no retries. A nil policy is
// disabled.
func (p *Policy) IsDisabled() bool {
	return p == nil || p.MaxRetries <= 0
}

// Delay returns the pre-jitter delay before retry attempt n (1-indexed):
// min(InitialDelay * 2^(n-1), MaxBackoff). It is monotonically non-decreasing
// in n until it saturates at MaxBackoff.
func (p *Policy) Delay(attempt int) time.Duration {
	if p == nil || attempt < 1 {
		return 0
	}

	backoff := float64(p.InitialDelay) * math.Pow(2, float64(attempt-1))
	if backoff >= float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(backoff)
}

// Clone returns a deep copy of the policy so callers can modify it without
// affecting the original.
func (p *Policy) Clone() *Policy {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Policy) String() string {
	if p == nil {
		return "retry.Policy(nil)"
	}
	return fmt.Sprintf("retry.Policy(retries=%d initial=%s max=%s randomize=%t)",
		p.MaxRetries, p.InitialDelay, p.MaxBackoff, p.Randomize)
}

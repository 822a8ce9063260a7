package retry

import (
	"sync"
	"time"
)

// Defaults is a mutable slot holding a default retry policy. The package
// keeps one process-wide instance (see Default and SetDefault); tests and
// embedders can create isolated instances instead of mutating shared process
// state.
type Defaults struct {
	mu     sync.RWMutex
	policy *Policy
}

// NewDefaults returns a slot seeded with the baseline policy.
func NewDefaults() *Defaults {
	return &Defaults{policy: DefaultPolicy()}
}

// Get returns a copy of the current default policy.
func (d *Defaults) Get() *Policy {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.policy.Clone()
}

// Set replaces the default policy. The change is observable by every handle
// deferring to this slot; handles holding an explicit override are
// unaffected. A nil policy disables default retries.
func (d *Defaults) Set(p *Policy) error {
	if p == nil {
		p = Disabled()
	}
	if err := p.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.policy = p.Clone()
	return nil
}

// SetParams replaces the default policy from individual parameters, the same
// ones NewPolicy accepts.
func (d *Defaults) SetParams(maxRetries int, initialDelay, maxBackoff time.Duration, randomize bool) error {
	p, err := NewPolicy(maxRetries, initialDelay, maxBackoff, randomize)
	if err != nil {
		return err
	}
	return d.Set(p)
}

// std is the process-wide default slot captured by handles created without an
// explicit policy.
var std = NewDefaults()

// Default returns a copy of the current process-wide default policy.
func Default() *Policy {
	return std.Get()
}

// SetDefault replaces the process-wide default policy. Passing nil disables
// default retries for the whole process.
func SetDefault(p *Policy) error {
	return std.Set(p)
}

// SetDefaultParams replaces the process-wide default policy from individual
// parameters.
func SetDefaultParams(maxRetries int, initialDelay, maxBackoff time.Duration, randomize bool) error {
	return std.SetParams(maxRetries, initialDelay, maxBackoff, randomize)
}

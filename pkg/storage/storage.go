// Package storage implements the Google Cloud Storage resource handles:
// projects, buckets, objects and prefix pseudo-directories, plus streaming
// object readers and writers.
//
// Every handle carries its own retry slot. A handle created without an
// explicit policy defers to the process-wide default (resolved live at each
// operation); handles produced by a listing capture the lister's effective
// policy at creation time as an explicit deep copy, so later changes to the
// parent or to the process default do not retroactively change them.
package storage

import (
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// handle is the state shared by every resource handle.
type handle struct {
	t         session.Transport
	retry     retry.Override
	chunkSize int
}

// RetryPolicy returns the handle's explicit policy, or nil when the handle
// defers to the process default.
func (h *handle) RetryPolicy() *retry.Policy {
	return h.retry.Policy()
}

// SetRetryPolicy pins an explicit retry policy on the handle. Passing nil
// disables retries explicitly, which is distinct from ClearRetryPolicy.
func (h *handle) SetRetryPolicy(p *retry.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	h.retry = retry.Explicit(p)
	return nil
}

// ClearRetryPolicy reverts the handle to the live process default.
func (h *handle) ClearRetryPolicy() {
	h.retry = retry.Deferred()
}

// effectivePolicy resolves the policy that applies to an operation right now.
func (h *handle) effectivePolicy() *retry.Policy {
	return h.retry.Resolve()
}

// childOverride captures the handle's effective policy for a derived handle.
func (h *handle) childOverride() retry.Override {
	return retry.Explicit(h.effectivePolicy())
}

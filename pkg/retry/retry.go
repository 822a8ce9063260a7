package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
)

// sleepFunc is a variable to allow tests to observe delays without waiting
var sleepFunc = sleepContext

// Do runs op, retrying transient failures according to the policy. Retryable
// classification is errors.IsRetryable: transient HTTP statuses and network
// timeouts retry, everything else surfaces immediately. Once the retry budget
// is exhausted the last error is returned unchanged.
//
// A nil or disabled policy runs op exactly once.
func Do(ctx context.Context, p *Policy, op func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := op()
	for attempt := 1; !p.IsDisabled() && attempt <= p.MaxRetries && gcserrors.IsRetryable(err); attempt++ {
		if serr := sleepFunc(ctx, p.wait(attempt)); serr != nil {
			return serr
		}
		err = op()
	}
	return err
}

// wait returns the realized delay before retry attempt n, applying full
// jitter when the policy asks for it.
func (p *Policy) wait(attempt int) time.Duration {
	delay := p.Delay(attempt)
	if !p.Randomize || delay <= 0 {
		return delay
	}
	return time.Duration(randFloat64() * float64(delay))
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// randFloat64 returns a uniform value in [0, 1) sourced from crypto/rand so
// jitter is not correlated across processes seeded at the same instant.
func randFloat64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0.5
	}

	u := binary.BigEndian.Uint64(b[:]) >> 11
	return float64(u) / (1 << 53)
}

package venue

import (
	"context"
	"time"
)

const (
	// DefaultBackoffMin is the first reconnect delay after a failure.
	DefaultBackoffMin = 1 * time.Second

	// DefaultBackoffMax caps the exponential reconnect delay.
	DefaultBackoffMax = 30 * time.Second
)

// Backoff tracks the reconnect delay for one feed client: it doubles on
// every consecutive failure, is capped at max, and resets to min after a
// successful reconnect. It replaces unbounded retry-task spawning with a
// single explicit state variable per client. Not safe for concurrent use;
// each client owns exactly one Backoff touched only from its Run loop.
type Backoff struct {
	min  time.Duration
	max  time.Duration
	next time.Duration
}

// NewBackoff returns a Backoff with the given bounds. Non-positive arguments
// fall back to the defaults.
func NewBackoff(min, max time.Duration) *Backoff {
	if min <= 0 {
		min = DefaultBackoffMin
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}
	return &Backoff{min: min, max: max, next: min}
}

// Next returns the delay to wait before the upcoming attempt and advances
// the state for the one after it.
func (b *Backoff) Next() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

// Reset restores the delay to its minimum. Called after a successful
// reconnect.
func (b *Backoff) Reset() {
	b.next = b.min
}

// Wait sleeps for the next backoff delay or until the context is cancelled,
// in which case it returns the context error.
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package location

import (
	"context"
	"sync"
	"time"
)

// Provider obtains a location fix. A nil result means no usable reading was
// obtained within timeout, for any reason.
type Provider interface {
	RequestFix(ctx context.Context, timeout time.Duration) *Reading
}

// FixedProvider returns the same reading on every request. A nil Reading
// behaves like a provider that never gets a fix.
type FixedProvider struct {
	Reading *Reading
}

func (p FixedProvider) RequestFix(ctx context.Context, _ time.Duration) *Reading {
	if p.Reading == nil || ctx.Err() != nil {
		return nil
	}
	r := *p.Reading
	return &r
}

// Waiter is a Provider fed from outside, for example by a chat message that
// carries a location. RequestFix blocks until Deliver, Skip, the timeout or
// ctx cancellation, whichever comes first. Only one request may be pending.
type Waiter struct {
	mu      sync.Mutex
	pending chan *Reading
}

func NewWaiter() *Waiter {
	return &Waiter{}
}

func (w *Waiter) RequestFix(ctx context.Context, timeout time.Duration) *Reading {
	ch := make(chan *Reading, 1)

	w.mu.Lock()
	if w.pending != nil {
		// A newer request supersedes the old one; the old one gets nothing.
		close(w.pending)
	}
	w.pending = ch
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.pending == ch {
			w.pending = nil
		}
		w.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-ch:
		return r
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Pending reports whether a request is waiting for a reading.
func (w *Waiter) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// Deliver hands r to the pending request. It reports false when nobody is
// waiting.
func (w *Waiter) Deliver(r Reading) bool {
	return w.send(&r)
}

// Skip completes the pending request without a reading.
func (w *Waiter) Skip() bool {
	return w.send(nil)
}

func (w *Waiter) send(r *Reading) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return false
	}
	w.pending <- r
	w.pending = nil
	return true
}

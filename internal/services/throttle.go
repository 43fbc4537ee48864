package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cardforge/deck-builder/backend/internal/metrics"
)

// Throttle serializes outbound catalog requests so no two leave closer
// together than the configured minimum interval, measured from the start of
// the previous permitted request. Admission is strictly serialized: the mutex
// admits one waiter at a time, so only one "time until next slot" computation
// is ever in flight and grants happen in arrival order.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
}

// NewThrottle creates a throttle with the given minimum spacing between
// requests. There are no priority tiers and no deadline of its own; a caller
// waits as long as the queue ahead of it requires, or until its context is
// cancelled.
func NewThrottle(minInterval time.Duration) *Throttle {
	return &Throttle{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Acquire blocks until it is safe to issue one request. Returns an error only
// if ctx is cancelled while waiting.
func (t *Throttle) Acquire(ctx context.Context) error {
	start := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.ThrottleWaitDuration.Observe(time.Since(start).Seconds())
	return nil
}

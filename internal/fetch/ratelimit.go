// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/curriculum-engine/internal/httputil"
)

// Clock abstracts time so rate limiting can be tested without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock is the wall clock.
type RealClock struct{}

// Now returns time.Now().
func (RealClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error { return httputil.Sleep(ctx, d) }

// RateLimiter spaces requests to the same host by a minimum interval. One
// limiter is shared by every fetch in the process.
type RateLimiter struct {
	mu       sync.Mutex
	hosts    map[string]*rate.Limiter
	interval time.Duration
	clock    Clock
}

// MinInterval returns ceil(60000 / requestsPerMinute) milliseconds.
func MinInterval(requestsPerMinute int) time.Duration {
	if requestsPerMinute <= 0 {
		return 0
	}
	ms := math.Ceil(60000 / float64(requestsPerMinute))
	return time.Duration(ms) * time.Millisecond
}

// NewRateLimiter returns a limiter allowing requestsPerMinute per host. A nil
// clock uses RealClock.
func NewRateLimiter(requestsPerMinute int, clock Clock) *RateLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	return &RateLimiter{
		hosts:    make(map[string]*rate.Limiter),
		interval: MinInterval(requestsPerMinute),
		clock:    clock,
	}
}

// Interval reports the minimum spacing between requests to one host.
func (r *RateLimiter) Interval() time.Duration { return r.interval }

// Wait blocks until a request to host may be issued. Concurrent callers for
// the same host each reserve their own slot, so they queue instead of
// bursting.
func (r *RateLimiter) Wait(ctx context.Context, host string) error {
	if r.interval <= 0 {
		return nil
	}

	r.mu.Lock()
	lim, ok := r.hosts[host]
	if !ok {
		lim = rate.NewLimiter(rate.Every(r.interval), 1)
		r.hosts[host] = lim
	}
	now := r.clock.Now()
	res := lim.ReserveN(now, 1)
	r.mu.Unlock()

	if !res.OK() {
		return fmt.Errorf("rate limiter cannot reserve a slot for %s", host)
	}
	delay := res.DelayFrom(now)
	if delay <= 0 {
		return nil
	}
	if err := r.clock.Sleep(ctx, delay); err != nil {
		res.CancelAt(r.clock.Now())
		return err
	}
	return nil
}

// Package ratelimit throttles outbound requests to remote services.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Target identifies a remote service for rate limiting purposes.
type Target string

const (
	// TargetCatalog is the catalog snapshot host.
	TargetCatalog Target = "catalog"
	// TargetDrive is the Google Drive API.
	TargetDrive Target = "drive"
)

// Config holds rate limiting configuration for a target.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultLimits are conservative per-target defaults.
var DefaultLimits = map[Target]Config{
	TargetCatalog: {RequestsPerSecond: 0.5, BurstSize: 2},
	TargetDrive:   {RequestsPerSecond: 8.0, BurstSize: 10},
}

// DefaultBackoff is used when a 429 carries no usable Retry-After.
const DefaultBackoff = 60 * time.Second

// Limiter is a token bucket with an extra backoff window set after the
// remote side rejected a request for exceeding its quota.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter for target. Unknown targets get one request per second.
func New(target Target) *Limiter {
	cfg, ok := DefaultLimits[target]
	if !ok {
		cfg = Config{RequestsPerSecond: 1, BurstSize: 1}
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a limiter with custom configuration.
func NewWithConfig(cfg Config) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request may be made, honouring any backoff window.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Backoff records a quota rejection. A non-positive retryAfter uses DefaultBackoff.
func (l *Limiter) Backoff(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.retryAt = l.now().Add(retryAfter)
}

// Allow reports whether a request may be made immediately.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.limiter.Allow()
}

// RetryAt returns the end of the current backoff window, or zero.
func (l *Limiter) RetryAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt
}

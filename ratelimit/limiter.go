// Package ratelimit provides token-bucket limiters backed by
// golang.org/x/time/rate: a single global gate for the bridge and a keyed
// variant that gives every administrator their own bucket.
package ratelimit

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps a token-bucket limiter that decides whether a call may
// proceed.
type Limiter struct {
	lim *rate.Limiter
}

// NewLimiter creates a Limiter that permits rps calls per second with the
// given burst size.
func NewLimiter(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Allow reports whether a single call may proceed.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// Keyed hands out one token bucket per key, created lazily on first use.
type Keyed[K comparable] struct {
	rps   rate.Limit
	burst int

	mu   sync.Mutex
	lims map[K]*rate.Limiter
}

// NewKeyed creates a Keyed limiter where each key may make rps calls per
// second with the given burst.
func NewKeyed[K comparable](rps float64, burst int) *Keyed[K] {
	return &Keyed[K]{
		rps:   rate.Limit(rps),
		burst: burst,
		lims:  make(map[K]*rate.Limiter),
	}
}

// Allow reports whether key may make one more call.
func (k *Keyed[K]) Allow(key K) bool {
	k.mu.Lock()
	lim, ok := k.lims[key]
	if !ok {
		lim = rate.NewLimiter(k.rps, k.burst)
		k.lims[key] = lim
	}
	k.mu.Unlock()
	return lim.Allow()
}

// Forget drops the bucket for key, for example when a player leaves.
func (k *Keyed[K]) Forget(key K) {
	k.mu.Lock()
	defer k.mu.Unlock()
	delete(k.lims, key)
}

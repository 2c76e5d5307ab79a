// Package breaker guards the bridge client against a score restorer that
// keeps failing. After a run of failed calls the breaker opens and rejects
// calls outright with ErrOpen; once the cooldown has passed it lets a few
// probe calls through and closes again if they succeed.
package breaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned by Do while the breaker rejects calls.
var ErrOpen = errors.New("breaker: circuit open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithThreshold sets how many consecutive failures open the breaker.
// Default 5.
func WithThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.threshold = n
		}
	}
}

// WithCooldown sets how long the breaker stays open. Default 10s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithProbes sets how many successful probes close a half-open breaker.
// Default 1.
func WithProbes(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.probes = n
		}
	}
}

// WithFailurePredicate decides which errors count as failures. By default
// every non-nil error except context cancellation does.
func WithFailurePredicate(fn func(error) bool) Option {
	return func(b *Breaker) {
		if fn != nil {
			b.isFailure = fn
		}
	}
}

// WithClock overrides time.Now.
func WithClock(fn func() time.Time) Option {
	return func(b *Breaker) {
		if fn != nil {
			b.now = fn
		}
	}
}

// Breaker is safe for concurrent use.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	probes    int
	isFailure func(error) bool
	now       func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	passed   int // successful probes in HalfOpen
	inflight int // probes currently running in HalfOpen
	openedAt time.Time
}

// New creates a closed Breaker.
func New(opts ...Option) *Breaker {
	b := &Breaker{
		threshold: 5,
		cooldown:  10 * time.Second,
		probes:    1,
		isFailure: defaultFailure,
		now:       time.Now,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func defaultFailure(err error) bool {
	return err != nil && !errors.Is(err, context.Canceled)
}

// State returns the current position, moving Open to HalfOpen when the
// cooldown has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick()
	return b.state
}

// Do runs fn unless the breaker is open and records its result.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.acquire() {
		return ErrOpen
	}
	err := fn(ctx)
	b.release(b.isFailure(err))
	return err
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick()

	switch b.state {
	case Closed:
		return true
	case HalfOpen:
		if b.passed+b.inflight >= b.probes {
			return false
		}
		b.inflight++
		return true
	default:
		return false
	}
}

func (b *Breaker) release(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		if !failed {
			b.failures = 0
			return
		}
		b.failures++
		if b.failures >= b.threshold {
			b.trip()
		}
	case HalfOpen:
		b.inflight--
		if failed {
			b.trip()
			return
		}
		b.passed++
		if b.passed >= b.probes {
			b.state = Closed
			b.failures = 0
			b.passed = 0
		}
	}
}

// tick moves Open to HalfOpen once the cooldown has elapsed. b.mu must be
// held.
func (b *Breaker) tick() {
	if b.state == Open && b.now().Sub(b.openedAt) >= b.cooldown {
		b.state = HalfOpen
		b.passed = 0
		b.inflight = 0
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.passed = 0
	b.inflight = 0
}

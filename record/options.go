package record

import (
	"time"

	"github.com/Keksclan/goScoreRestorer/security"
	"github.com/Keksclan/goScoreRestorer/store"
)

// DefaultTTL is used when no TTL source is configured.
const DefaultTTL = 120 * time.Second

// config holds Cache settings assembled from options.
type config struct {
	store     store.Store[Record]
	ttl       func() time.Duration
	clock     func() time.Time
	sameHost  func(a, b string) bool
	keepEmpty bool
	overwrite bool
}

func defaultConfig() config {
	return config{
		ttl:      func() time.Duration { return DefaultTTL },
		clock:    time.Now,
		sameHost: security.SameHost,
	}
}

// Option configures a Cache.
type Option func(*config)

// WithStore replaces the default unbounded map store.
func WithStore(s store.Store[Record]) Option {
	return func(c *config) {
		if s != nil {
			c.store = s
		}
	}
}

// WithTTL sets the function consulted on every expiry check. It is called
// for each arrival so that operators can change the window at runtime.
func WithTTL(fn func() time.Duration) Option {
	return func(c *config) {
		if fn != nil {
			c.ttl = fn
		}
	}
}

// WithClock overrides time.Now for departures and arrivals without an
// explicit timestamp.
func WithClock(fn func() time.Time) Option {
	return func(c *config) {
		if fn != nil {
			c.clock = fn
		}
	}
}

// WithAddressMatcher replaces security.SameHost as the identity comparison.
func WithAddressMatcher(fn func(a, b string) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.sameHost = fn
		}
	}
}

// WithKeepEmpty stores records whose counters are all zero. By default such
// departures are skipped.
func WithKeepEmpty() Option {
	return func(c *config) {
		c.keepEmpty = true
	}
}

// WithOverwriteDuplicates makes a departure replace a live record for the
// same key instead of being ignored.
func WithOverwriteDuplicates() Option {
	return func(c *config) {
		c.overwrite = true
	}
}

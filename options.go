package scorerestorer

import (
	"log/slog"
	"time"

	"github.com/Keksclan/goScoreRestorer/cvar"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/Keksclan/goScoreRestorer/tracing"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Restorer.
type Option func(*config)

// WithMiddleware adds m to the event chain at the given order. Lower orders
// run first; see the Order constants in internal/core for the built-in
// layers.
func WithMiddleware(order int, m Middleware) Option {
	return func(c *config) {
		c.middlewares.Add(order, m)
	}
}

// WithRecovery turns a panic inside event handling into an error so that a
// faulty collaborator cannot take the game server down.
func WithRecovery() Option {
	return func(c *config) {
		c.recovery = true
	}
}

// WithVars reads the restore window from the _scoreSaveTime variable of s.
// The variable is set to 120 when absent and re-read on every arrival.
func WithVars(s cvar.Store) Option {
	return func(c *config) {
		c.vars = s
	}
}

// WithClock overrides time.Now for events without a timestamp.
func WithClock(fn func() time.Time) Option {
	return func(c *config) {
		c.clock = fn
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetrics registers the restorer's Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithTracing opens a span for every handled event.
func WithTracing(cfg tracing.Config) Option {
	return func(c *config) {
		c.tracing = &cfg
	}
}

// WithBoundedStore caps the number of saved records at n using a ristretto
// cache. Records beyond the cap may be evicted before they expire.
func WithBoundedStore(n int64) Option {
	return func(c *config) {
		c.maxRecords = n
	}
}

// WithKeepEmpty saves records whose counters are all zero.
func WithKeepEmpty() Option {
	return func(c *config) {
		c.recordOpts = append(c.recordOpts, record.WithKeepEmpty())
	}
}

// WithOverwriteDuplicates lets a departure replace a pending record for the
// same callsign instead of being ignored.
func WithOverwriteDuplicates() Option {
	return func(c *config) {
		c.recordOpts = append(c.recordOpts, record.WithOverwriteDuplicates())
	}
}

// WithAsync makes Submit enqueue events for a single background worker. At
// most n events wait in the queue; further submissions fail with
// ErrQueueFull.
func WithAsync(n int) Option {
	return func(c *config) {
		c.queueSize = n
	}
}

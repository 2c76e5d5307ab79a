package scorerestorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Keksclan/goScoreRestorer/cvar"
	"github.com/Keksclan/goScoreRestorer/host"
	"github.com/Keksclan/goScoreRestorer/internal/core"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/Keksclan/goScoreRestorer/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Messages sent to a player whose record was found.
const (
	MsgRestored = "Your score has been restored."
	MsgDeferred = "Your score record will be saved while you are in observer mode."
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("scorerestorer: restorer closed")
	// ErrQueueFull is returned by Submit when the async queue is full.
	ErrQueueFull = errors.New("scorerestorer: event queue full")
	// ErrUnknownEvent is returned for an Event implementation outside this
	// package.
	ErrUnknownEvent = errors.New("scorerestorer: unknown event")
)

// Restorer connects the record cache to a game server. It saves counters
// when players leave and applies them again when they come back.
type Restorer struct {
	cache    *record.Cache
	bounded  *store.Bounded[record.Record]
	scores   host.ScoreMutator
	messages host.Messenger
	logger   *slog.Logger
	metrics  *metrics.Collector
	gatherer prometheus.Gatherer
	layers   []Middleware
	handle   HandlerFunc

	mu     sync.RWMutex
	closed bool
	queue  chan job
	done   chan struct{}
}

type job struct {
	ctx context.Context
	ev  Event
}

// New creates a Restorer that applies restored scores through scores and
// informs players through messages.
//
//	r, err := scorerestorer.New(srv, srv,
//		scorerestorer.WithRecovery(),
//		scorerestorer.WithVars(vars),
//	)
func New(scores host.ScoreMutator, messages host.Messenger, opts ...Option) (*Restorer, error) {
	if scores == nil || messages == nil {
		return nil, errors.New("scorerestorer: score mutator and messenger are required")
	}

	var cfg config
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.vars == nil {
		cfg.vars = cvar.NewMemory()
	}
	cvar.EnsureDefault(cfg.vars, cvar.SaveTime, cvar.DefaultSaveTime.Seconds())

	r := &Restorer{
		scores:   scores,
		messages: messages,
		logger:   cfg.logger,
	}

	recordOpts := []record.Option{
		record.WithTTL(cvar.Seconds(cfg.vars, cvar.SaveTime, cvar.DefaultSaveTime)),
		record.WithClock(cfg.clock),
	}
	if cfg.maxRecords > 0 {
		b, err := store.NewBounded[record.Record](cfg.maxRecords)
		if err != nil {
			return nil, fmt.Errorf("scorerestorer: bounded store: %w", err)
		}
		r.bounded = b
		recordOpts = append(recordOpts, record.WithStore(b))
	}
	r.cache = record.New(append(recordOpts, cfg.recordOpts...)...)

	if cfg.registerer != nil {
		m, err := metrics.New(cfg.registerer, func() float64 { return float64(r.cache.Len()) })
		if err != nil {
			r.closeStore()
			return nil, fmt.Errorf("scorerestorer: metrics: %w", err)
		}
		r.metrics = m
		if g, ok := cfg.registerer.(prometheus.Gatherer); ok {
			r.gatherer = g
		}
	}

	if cfg.recovery {
		cfg.middlewares.Add(core.OrderRecovery, recoveryLayer(r.logger, r.metrics))
	}
	cfg.middlewares.Add(core.OrderRequestID, requestIDLayer())
	if cfg.tracing != nil {
		cfg.middlewares.Add(core.OrderTracing, tracingLayer(cfg.tracing))
	}
	cfg.middlewares.Add(core.OrderLogging, loggingLayer(r.logger))
	r.layers = cfg.middlewares.Build()
	r.handle = Wrap(r.dispatch, r.layers...)

	if cfg.queueSize > 0 {
		r.queue = make(chan job, cfg.queueSize)
		r.done = make(chan struct{})
		go r.work()
	}
	return r, nil
}

// HandleEvent processes ev synchronously.
func (r *Restorer) HandleEvent(ctx context.Context, ev Event) error {
	return r.handle(ctx, ev)
}

// Depart handles a departure and reports what happened to the record.
func (r *Restorer) Depart(ctx context.Context, d Departure) (record.DepartOutcome, error) {
	var out record.DepartOutcome
	err := Wrap(func(ctx context.Context, _ Event) error {
		out = r.depart(ctx, d)
		return nil
	}, r.layers...)(ctx, d)
	return out, err
}

// Arrive handles an arrival and reports the outcome together with the
// record that was found, if any.
func (r *Restorer) Arrive(ctx context.Context, a Arrival) (record.ArriveResult, error) {
	var res record.ArriveResult
	err := Wrap(func(ctx context.Context, _ Event) error {
		var err error
		res, err = r.arrive(ctx, a)
		return err
	}, r.layers...)(ctx, a)
	return res, err
}

// Cache returns the underlying record cache.
func (r *Restorer) Cache() *record.Cache {
	return r.cache
}

// MetricsHandler returns an http.Handler serving the collectors registered
// through WithMetrics, or the default registry when none was given.
func (r *Restorer) MetricsHandler() http.Handler {
	if r.gatherer != nil {
		return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

func (r *Restorer) dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case Departure:
		r.depart(ctx, e)
		return nil
	case Arrival:
		_, err := r.arrive(ctx, e)
		return err
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
}

func (r *Restorer) depart(ctx context.Context, d Departure) record.DepartOutcome {
	out := r.cache.Depart(d.record())
	r.metrics.Departure(out.String())
	r.logger.DebugContext(ctx, "departure",
		"callsign", d.Callsign,
		"outcome", out.String(),
	)
	return out
}

func (r *Restorer) arrive(ctx context.Context, a Arrival) (record.ArriveResult, error) {
	res := r.cache.Arrive(a.record())
	r.metrics.Arrival(res.Outcome.String())
	r.logger.DebugContext(ctx, "arrival",
		"callsign", a.Callsign,
		"observer", a.Observer,
		"outcome", res.Outcome.String(),
	)

	switch res.Outcome {
	case record.Restored:
		rec := res.Record
		if err := errors.Join(
			r.scores.SetWins(ctx, a.Slot, rec.Wins),
			r.scores.SetLosses(ctx, a.Slot, rec.Losses),
			r.scores.SetTeamKills(ctx, a.Slot, rec.TeamKills),
		); err != nil {
			// The record is already consumed; the log is the only trace left.
			r.logger.WarnContext(ctx, "restoring score failed, counters lost",
				"callsign", a.Callsign,
				"slot", a.Slot,
				"wins", rec.Wins,
				"losses", rec.Losses,
				"team_kills", rec.TeamKills,
				"error", err,
			)
			return res, fmt.Errorf("restore score of %s: %w", a.Callsign, err)
		}
		if err := r.messages.SendToPlayer(ctx, a.Slot, MsgRestored); err != nil {
			return res, fmt.Errorf("notify %s: %w", a.Callsign, err)
		}
	case record.DeferredRestore:
		if err := r.messages.SendToPlayer(ctx, a.Slot, MsgDeferred); err != nil {
			return res, fmt.Errorf("notify %s: %w", a.Callsign, err)
		}
	}
	return res, nil
}

// Submit hands ev to the background worker when WithAsync is set and
// handles it inline otherwise. Queued events keep the values of ctx but not
// its cancellation.
func (r *Restorer) Submit(ctx context.Context, ev Event) error {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return ErrClosed
	}
	if r.queue == nil {
		// Handlers may call Close, so the lock is not held across them.
		r.mu.RUnlock()
		return r.HandleEvent(ctx, ev)
	}
	defer r.mu.RUnlock()
	select {
	case r.queue <- job{ctx: context.WithoutCancel(ctx), ev: ev}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Restorer) work() {
	defer close(r.done)
	for j := range r.queue {
		// Failures are already logged by the logging layer.
		_ = r.HandleEvent(j.ctx, j.ev)
	}
}

// Close stops accepting events, waits for queued events to be handled and
// discards every saved record. It returns ctx.Err() if ctx ends before the
// queue drains; the records are discarded regardless.
func (r *Restorer) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.queue != nil {
		close(r.queue)
	}
	r.mu.Unlock()

	var err error
	if r.done != nil {
		select {
		case <-r.done:
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	r.cache.Flush()
	if err == nil {
		r.closeStore()
	}
	return err
}

func (r *Restorer) closeStore() {
	if r.bounded != nil {
		r.bounded.Close()
	}
}

// SaveTime returns the restore window currently in effect.
func (r *Restorer) SaveTime() time.Duration {
	return r.cache.TTL()
}

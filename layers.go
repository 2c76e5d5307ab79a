package scorerestorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/Keksclan/goScoreRestorer/contextx"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// ErrPanic wraps a panic recovered while handling an event.
var ErrPanic = errors.New("scorerestorer: panic while handling event")

func recoveryLayer(logger *slog.Logger, m *metrics.Collector) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, ev Event) (err error) {
			defer func() {
				if r := recover(); r != nil {
					m.Panic()
					logger.ErrorContext(ctx, "recovered panic",
						"event", ev.Name(),
						"callsign", callsignOf(ev),
						"panic", r,
						"stack", string(debug.Stack()),
					)
					err = fmt.Errorf("%w: %v", ErrPanic, r)
				}
			}()
			return next(ctx, ev)
		}
	}
}

func requestIDLayer() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, ev Event) error {
			return next(contextx.EnsureRequestID(ctx), ev)
		}
	}
}

func tracingLayer(cfg *tracing.Config) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, ev Event) error {
			ctx, span := cfg.Start(ctx, "scorerestorer."+ev.Name(),
				attribute.String("player.callsign", callsignOf(ev)),
				attribute.Int("player.slot", slotOf(ev)),
			)
			err := next(ctx, ev)
			tracing.End(span, err)
			return err
		}
	}
}

func loggingLayer(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, ev Event) error {
			start := time.Now()
			err := next(ctx, ev)
			attrs := []any{
				"event", ev.Name(),
				"callsign", callsignOf(ev),
				"slot", slotOf(ev),
				"request_id", contextx.RequestIDFromContext(ctx),
				"duration", time.Since(start),
			}
			if err != nil {
				logger.WarnContext(ctx, "event handling failed", append(attrs, "error", err)...)
			} else {
				logger.DebugContext(ctx, "event handled", attrs...)
			}
			return err
		}
	}
}

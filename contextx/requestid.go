package contextx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// WithRequestID returns a derived context that carries the given request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the request ID stored in ctx.
// It returns an empty string when no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// EnsureRequestID returns ctx with a fresh random request ID unless one is
// already present.
func EnsureRequestID(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	var buf [8]byte
	_, _ = rand.Read(buf[:])
	return WithRequestID(ctx, hex.EncodeToString(buf[:]))
}

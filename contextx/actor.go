package contextx

import "context"

// Actor identifies the game server behind a bridge call. It is populated by
// the bridge authentication interceptor and read back by handlers and logs.
type Actor struct {
	// HostID names the game server, as configured next to its token.
	HostID string
}

// WithActor returns a derived context that carries the given Actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext extracts the Actor stored in ctx.
// The boolean return value indicates whether an Actor was present.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}

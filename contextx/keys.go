// Package contextx carries per-call values through a context: the request
// ID assigned to every handled event or bridge call, and the authenticated
// game server.
package contextx

// contextKey is an unexported type used as context key to avoid collisions
// with keys defined in other packages.
type contextKey int

const (
	actorKey contextKey = iota
	requestIDKey
)

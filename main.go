// Package scorerestorer keeps a player's wins, losses and team kills across a
// disconnect and restores them when the same player rejoins from the same
// address within the configured window.
//
// A game server forwards its leave and join notifications as [Event] values
// to a [Restorer]. Handling runs through a small middleware chain that can
// be extended with the same primitives the restorer uses internally.
package scorerestorer

import "context"

// HandlerFunc handles one event.
type HandlerFunc func(ctx context.Context, ev Event) error

// Middleware transforms a HandlerFunc, allowing pre/post behavior composition.
type Middleware func(HandlerFunc) HandlerFunc

// Chain composes middlewares from left to right, i.e., Chain(A, B)(h) => A(B(h)).
func Chain(mw ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Wrap applies the middleware chain to a handler and returns the wrapped handler.
func Wrap(h HandlerFunc, mw ...Middleware) HandlerFunc {
	if len(mw) == 0 {
		return h
	}
	return Chain(mw...)(h)
}

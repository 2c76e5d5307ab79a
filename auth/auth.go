// Package auth authenticates game servers calling the bridge. Each server
// presents a bearer token in the "authorization" metadata; the token maps to
// the host ID recorded in the request context.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Keksclan/goScoreRestorer/contextx"
	"google.golang.org/grpc/metadata"
)

// AuthFunc authenticates a bridge call. It receives the request context, the
// full method name and the incoming metadata. On success it returns a
// (possibly enriched) context; on failure it returns an error.
type AuthFunc func(ctx context.Context, fullMethod string, md metadata.MD) (context.Context, error)

var (
	// ErrMissingToken is returned when no bearer token was sent.
	ErrMissingToken = errors.New("auth: missing bearer token")
	// ErrUnknownToken is returned when the token matches no host.
	ErrUnknownToken = errors.New("auth: unknown token")
)

// MetadataKey carries the bearer token.
const MetadataKey = "authorization"

// BearerToken returns the token from an "authorization: Bearer <token>"
// entry, or "" when there is none.
func BearerToken(md metadata.MD) string {
	for _, v := range md.Get(MetadataKey) {
		scheme, token, ok := strings.Cut(strings.TrimSpace(v), " ")
		if ok && strings.EqualFold(scheme, "bearer") {
			return strings.TrimSpace(token)
		}
	}
	return ""
}

// Tokens returns an AuthFunc that accepts the keys of tokens and stores the
// matching host ID as the contextx.Actor.
func Tokens(tokens map[string]string) AuthFunc {
	type entry struct {
		token  []byte
		hostID string
	}
	entries := make([]entry, 0, len(tokens))
	for tok, id := range tokens {
		if tok == "" {
			continue
		}
		entries = append(entries, entry{token: []byte(tok), hostID: id})
	}

	return func(ctx context.Context, _ string, md metadata.MD) (context.Context, error) {
		got := BearerToken(md)
		if got == "" {
			return ctx, ErrMissingToken
		}
		// Compare against every entry so timing does not reveal a match.
		hostID, found := "", false
		for _, e := range entries {
			if subtle.ConstantTimeCompare(e.token, []byte(got)) == 1 {
				hostID, found = e.hostID, true
			}
		}
		if !found {
			return ctx, ErrUnknownToken
		}
		return contextx.WithActor(ctx, contextx.Actor{HostID: hostID}), nil
	}
}

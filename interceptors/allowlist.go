// Package interceptors holds the unary server interceptors wrapped around
// the bridge service.
package interceptors

import (
	"context"

	"github.com/Keksclan/goScoreRestorer/security"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// errBlocked is allocated once to avoid per-request allocations on the hot path.
var errBlocked = status.Error(codes.PermissionDenied, "blocked")

// AllowListUnary returns a unary server interceptor that denies calls from
// peers outside a.
func AllowListUnary(a *security.AllowList) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if !a.Allowed(ctx) {
			return nil, errBlocked
		}
		return handler(ctx, req)
	}
}

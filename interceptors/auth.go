package interceptors

import (
	"context"

	"github.com/Keksclan/goScoreRestorer/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// errUnauthenticated is allocated once to avoid per-request allocations on the hot path.
var errUnauthenticated = status.Error(codes.Unauthenticated, "unauthenticated")

// authError returns the original error if it is already a gRPC status error,
// otherwise wraps it as codes.Unauthenticated.
func authError(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	return errUnauthenticated
}

// AuthUnary calls fn before forwarding to the handler. Methods listed in
// skip (full method names) are not authenticated.
func AuthUnary(fn auth.AuthFunc, skip ...string) grpc.UnaryServerInterceptor {
	open := make(map[string]bool, len(skip))
	for _, m := range skip {
		open[m] = true
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if open[info.FullMethod] {
			return handler(ctx, req)
		}
		md, _ := metadata.FromIncomingContext(ctx)
		newCtx, err := fn(ctx, info.FullMethod, md)
		if err != nil {
			return nil, authError(err)
		}
		return handler(newCtx, req)
	}
}

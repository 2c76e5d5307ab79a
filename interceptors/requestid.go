package interceptors

import (
	"context"

	"github.com/Keksclan/goScoreRestorer/contextx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDKey is the metadata key a caller may use to pass its own request
// ID.
const RequestIDKey = "x-request-id"

// RequestIDUnary returns a unary server interceptor that puts a request ID
// in the context, taking the caller's when present.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(RequestIDKey); len(ids) > 0 && ids[0] != "" {
				ctx = contextx.WithRequestID(ctx, ids[0])
			}
		}
		return handler(contextx.EnsureRequestID(ctx), req)
	}
}

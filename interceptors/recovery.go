package interceptors

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/Keksclan/goScoreRestorer/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errInternal = status.Error(codes.Internal, "internal server error")

// RecoveryUnary returns a unary server interceptor that recovers from panics
// and returns an Internal gRPC error instead of crashing the process. The
// panic is logged and counted on m, which may be nil.
func RecoveryUnary(logger *slog.Logger, m *metrics.Collector) grpc.UnaryServerInterceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				m.Panic()
				logger.ErrorContext(ctx, "recovered panic in bridge call",
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				resp = nil
				err = errInternal
			}
		}()
		return handler(ctx, req)
	}
}

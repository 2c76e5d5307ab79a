package bridge

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/Keksclan/goScoreRestorer/auth"
	"github.com/Keksclan/goScoreRestorer/interceptors"
	"github.com/Keksclan/goScoreRestorer/internal/core"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/ratelimit"
	"github.com/Keksclan/goScoreRestorer/record"
	"github.com/Keksclan/goScoreRestorer/security"
	"github.com/Keksclan/goScoreRestorer/tracing"
	"google.golang.org/grpc"
)

// serverConfig holds the configuration assembled via functional options.
type serverConfig struct {
	recovery  bool
	authFn    auth.AuthFunc
	allowList []string
	rps       float64
	burst     int
	tracing   *tracing.Config
	logger    *slog.Logger
	metrics   *metrics.Collector
	extra     core.Ordered[grpc.UnaryServerInterceptor]
}

// Option configures a Server.
type Option func(*serverConfig)

// WithRecovery turns panics in handlers into codes.Internal.
func WithRecovery() Option {
	return func(c *serverConfig) {
		c.recovery = true
	}
}

// WithAuth authenticates every call except Ping with fn.
func WithAuth(fn auth.AuthFunc) Option {
	return func(c *serverConfig) {
		c.authFn = fn
	}
}

// WithAuthTokens authenticates callers by bearer token. tokens maps each
// token to the host ID it identifies.
func WithAuthTokens(tokens map[string]string) Option {
	return WithAuth(auth.Tokens(tokens))
}

// WithAllowList only admits peers whose address falls in one of cidrs. A
// bare address admits that single host.
func WithAllowList(cidrs ...string) Option {
	return func(c *serverConfig) {
		c.allowList = append(c.allowList, cidrs...)
	}
}

// WithRateLimit applies one global token bucket to all calls.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *serverConfig) {
		c.rps = rps
		c.burst = burst
	}
}

// WithTracing opens a server span for every call.
func WithTracing(cfg tracing.Config) Option {
	return func(c *serverConfig) {
		c.tracing = &cfg
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *serverConfig) {
		c.logger = l
	}
}

// WithMetrics counts outcomes and recovered panics on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *serverConfig) {
		c.metrics = m
	}
}

// WithUnaryInterceptor adds i at the given order; see internal/core for the
// orders of the built-in interceptors.
func WithUnaryInterceptor(order int, i grpc.UnaryServerInterceptor) Option {
	return func(c *serverConfig) {
		c.extra.Add(order, i)
	}
}

// Server serves the bridge over gRPC.
type Server struct {
	grpcServer *grpc.Server
}

// NewServer creates a Server for cache. Interceptors run in a fixed order
// regardless of the order options are passed in: recovery, request ID,
// tracing, auth, allow-list, rate limit.
//
//	srv, err := bridge.NewServer(cache,
//		bridge.WithRecovery(),
//		bridge.WithAuthTokens(map[string]string{token: "eu-1"}),
//		bridge.WithAllowList("10.0.0.0/8"),
//	)
func NewServer(cache *record.Cache, opts ...Option) (*Server, error) {
	var cfg serverConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	chain := &cfg.extra
	if cfg.recovery {
		chain.Add(core.OrderRecovery, interceptors.RecoveryUnary(cfg.logger, cfg.metrics))
	}
	chain.Add(core.OrderRequestID, interceptors.RequestIDUnary())
	if cfg.tracing != nil {
		chain.Add(core.OrderTracing, tracing.UnaryServerInterceptor(cfg.tracing))
	}
	if cfg.authFn != nil {
		chain.Add(core.OrderAuth, interceptors.AuthUnary(cfg.authFn, PingFullMethod))
	}
	if len(cfg.allowList) > 0 {
		al, err := security.NewAllowList(cfg.allowList)
		if err != nil {
			return nil, fmt.Errorf("bridge: allow list: %w", err)
		}
		chain.Add(core.OrderAllowList, interceptors.AllowListUnary(al))
	}
	if cfg.rps > 0 {
		chain.Add(core.OrderRateLimit, interceptors.RateLimitUnary(ratelimit.NewLimiter(cfg.rps, cfg.burst)))
	}

	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(chain.Build()...))
	Register(gs, NewService(cache, cfg.metrics, cfg.logger))
	return &Server{grpcServer: gs}, nil
}

// GRPC returns the underlying *grpc.Server so callers can register more
// services, such as health checks.
func (s *Server) GRPC() *grpc.Server {
	return s.grpcServer
}

// Serve accepts connections on lis until Stop or GracefulStop is called.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// GracefulStop stops accepting calls and waits for running ones to finish.
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}

// Stop closes all connections immediately.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

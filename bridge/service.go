// Package bridge exposes the record cache over gRPC so that game servers
// running in another process can use the score restorer. Departures and
// arrivals go through the same cache as in-process events; for a restored
// arrival the response carries the counters and the caller applies them.
//
// The service is registered from a hand-written grpc.ServiceDesc with
// JSON-encoded messages, so no protobuf code generation is required.
package bridge

import (
	"context"
	"log/slog"
	"strings"
	"time"

	scorerestorer "github.com/Keksclan/goScoreRestorer"
	"github.com/Keksclan/goScoreRestorer/contextx"
	"github.com/Keksclan/goScoreRestorer/metrics"
	"github.com/Keksclan/goScoreRestorer/record"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service name and full method names.
const (
	ServiceName        = "scorerestorer.v1.Bridge"
	DepartFullMethod   = "/" + ServiceName + "/Depart"
	ArriveFullMethod   = "/" + ServiceName + "/Arrive"
	PingFullMethod     = "/" + ServiceName + "/Ping"
	serviceDescription = "scorerestorer/v1/bridge.proto"
)

// errMissingCallsign is allocated once to avoid per-request allocations on the hot path.
var errMissingCallsign = status.Error(codes.InvalidArgument, "callsign is required")

// Handler is the interface the bridge service implementation satisfies.
type Handler interface {
	Depart(ctx context.Context, req *DepartRequest) (*DepartResponse, error)
	Arrive(ctx context.Context, req *ArriveRequest) (*ArriveResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
}

// Service implements Handler on top of a record.Cache.
type Service struct {
	cache   *record.Cache
	metrics *metrics.Collector
	logger  *slog.Logger
	now     func() time.Time
}

var _ Handler = (*Service)(nil)

// NewService wraps cache. m may be nil.
func NewService(cache *record.Cache, m *metrics.Collector, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{cache: cache, metrics: m, logger: logger, now: time.Now}
}

// Depart implements Handler.
func (s *Service) Depart(ctx context.Context, req *DepartRequest) (*DepartResponse, error) {
	if strings.TrimSpace(req.Callsign) == "" {
		return nil, errMissingCallsign
	}
	out := s.cache.Depart(record.Departure{
		Callsign:  req.Callsign,
		Address:   req.Address,
		Wins:      req.Wins,
		Losses:    req.Losses,
		TeamKills: req.TeamKills,
		At:        fromUnixMilli(req.AtUnixMilli),
	})
	s.metrics.Departure(out.String())
	s.logger.DebugContext(ctx, "bridge departure",
		"host", hostID(ctx),
		"request_id", contextx.RequestIDFromContext(ctx),
		"callsign", req.Callsign,
		"outcome", out.String(),
	)
	return &DepartResponse{Outcome: out.String()}, nil
}

// Arrive implements Handler.
func (s *Service) Arrive(ctx context.Context, req *ArriveRequest) (*ArriveResponse, error) {
	if strings.TrimSpace(req.Callsign) == "" {
		return nil, errMissingCallsign
	}
	res := s.cache.Arrive(record.Arrival{
		Callsign: req.Callsign,
		Address:  req.Address,
		Observer: req.Observer,
		At:       fromUnixMilli(req.AtUnixMilli),
	})
	s.metrics.Arrival(res.Outcome.String())
	s.logger.DebugContext(ctx, "bridge arrival",
		"host", hostID(ctx),
		"request_id", contextx.RequestIDFromContext(ctx),
		"callsign", req.Callsign,
		"outcome", res.Outcome.String(),
	)

	resp := &ArriveResponse{Outcome: res.Outcome.String()}
	switch res.Outcome {
	case record.Restored:
		resp.Wins = res.Record.Wins
		resp.Losses = res.Record.Losses
		resp.TeamKills = res.Record.TeamKills
		resp.Message = scorerestorer.MsgRestored
	case record.DeferredRestore:
		resp.Message = scorerestorer.MsgDeferred
	}
	return resp, nil
}

// Ping implements Handler.
func (s *Service) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return &PingResponse{
		Records:         s.cache.Len(),
		SaveTimeSeconds: s.cache.TTL().Seconds(),
		ServerTimeUnix:  s.now().Unix(),
	}, nil
}

func hostID(ctx context.Context) string {
	a, _ := contextx.ActorFromContext(ctx)
	return a.HostID
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// ServiceDesc is the grpc.ServiceDesc for the scorerestorer.v1.Bridge service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Depart", Handler: departHandler},
		{MethodName: "Arrive", Handler: arriveHandler},
		{MethodName: "Ping", Handler: pingHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: serviceDescription,
}

// Register registers a bridge implementation on s.
func Register(s grpc.ServiceRegistrar, h Handler) {
	s.RegisterService(&ServiceDesc, h)
}

func departHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(DepartRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Depart(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: DepartFullMethod}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Depart(ctx, r.(*DepartRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func arriveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(ArriveRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Arrive(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ArriveFullMethod}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Arrive(ctx, r.(*ArriveRequest))
	}
	return interceptor(ctx, req, info, handler)
}

func pingHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	req := new(PingRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Handler).Ping(ctx, req)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: PingFullMethod}
	handler := func(ctx context.Context, r any) (any, error) {
		return srv.(Handler).Ping(ctx, r.(*PingRequest))
	}
	return interceptor(ctx, req, info, handler)
}

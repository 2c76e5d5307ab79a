package bridge

import (
	"context"
	"time"

	"github.com/Keksclan/goScoreRestorer/breaker"
	"github.com/Keksclan/goScoreRestorer/contextx"
	"github.com/Keksclan/goScoreRestorer/interceptors"
	"github.com/cenkalti/backoff/v4"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Client calls a remote bridge. Only Ping is retried with exponential
// backoff. Depart and Arrive change the remote cache, and a call whose
// response was lost may already have been applied, so they are sent once.
// Once the breaker opens, calls fail fast with breaker.ErrOpen until it lets
// a trial call through again.
type Client struct {
	conn       grpc.ClientConnInterface
	token      string
	breaker    *breaker.Breaker
	newBackOff func() backoff.BackOff
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithToken sends token as a bearer credential on every call.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithBreaker replaces the default breaker.
func WithBreaker(b *breaker.Breaker) ClientOption {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithBackOff sets the retry policy for Ping. fn is called once per call and
// must return a fresh BackOff. Use backoff.StopBackOff to disable retries.
func WithBackOff(fn func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		if fn != nil {
			c.newBackOff = fn
		}
	}
}

// NewClient creates a Client on conn.
func NewClient(conn grpc.ClientConnInterface, opts ...ClientOption) *Client {
	c := &Client{
		conn:       conn,
		breaker:    breaker.New(breaker.WithFailurePredicate(transient)),
		newBackOff: defaultBackOff,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 5 * time.Second
	return b
}

// transient reports whether err is worth retrying and counts against the
// breaker.
func transient(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// Depart reports a departure.
func (c *Client) Depart(ctx context.Context, req *DepartRequest) (*DepartResponse, error) {
	resp := new(DepartResponse)
	if err := c.invoke(ctx, DepartFullMethod, req, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

// Arrive reports an arrival. When resp.Outcome is "restored" the caller
// applies the returned counters to the player.
func (c *Client) Arrive(ctx context.Context, req *ArriveRequest) (*ArriveResponse, error) {
	resp := new(ArriveResponse)
	if err := c.invoke(ctx, ArriveFullMethod, req, resp, false); err != nil {
		return nil, err
	}
	return resp, nil
}

// Ping checks that the remote restorer is serving.
func (c *Client) Ping(ctx context.Context) (*PingResponse, error) {
	resp := new(PingResponse)
	if err := c.invoke(ctx, PingFullMethod, &PingRequest{}, resp, true); err != nil {
		return nil, err
	}
	return resp, nil
}

// invoke sends one call through the breaker. Only idempotent calls are
// retried.
func (c *Client) invoke(ctx context.Context, method string, req, resp any, idempotent bool) error {
	ctx = c.outgoing(ctx)
	op := func() error {
		err := c.breaker.Do(ctx, func(ctx context.Context) error {
			return c.conn.Invoke(ctx, method, req, resp)
		})
		if err != nil && (!idempotent || !transient(err)) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(c.newBackOff(), ctx))
}

func (c *Client) outgoing(ctx context.Context) context.Context {
	var kv []string
	if c.token != "" {
		kv = append(kv, "authorization", "Bearer "+c.token)
	}
	if id := contextx.RequestIDFromContext(ctx); id != "" {
		kv = append(kv, interceptors.RequestIDKey, id)
	}
	if len(kv) == 0 {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, kv...)
}

//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
	domain "github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the AlarmClockService stub with domain conversions and timeouts.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the service stub.
	api *api.AlarmClockClient

	// callTimeout is the default timeout for individual unary calls.
	callTimeout time.Duration
	// actor is sent with every call when set.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for unary calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor sends actor with every call.
func WithActor(actor Actor) Option {
	return func(c *Client) {
		c.actor = &actor
	}
}

// errAddressRequired is returned when a required address value is missing.
var errAddressRequired = errors.New("address must be provided")

// Dial prepares a connection to the alarm clock daemon. The connection is
// established lazily on the first call.
// Note: this uses insecure transport credentials; deploy on a trusted network
// or terminate TLS in a proxy until native TLS is added.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent()),
	}

	if client.actor != nil {
		dialOptions = append(dialOptions,
			grpc.WithChainUnaryInterceptor(actorUnaryInterceptor(*client.actor)),
			grpc.WithChainStreamInterceptor(actorStreamInterceptor(*client.actor)),
		)
	}

	// Use the non-context NewClient API recommended by grpc-go
	// (DialContext is deprecated as of grpc-go v1.60+).
	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial alarm clock: %w", err)
	}

	client.conn = conn
	client.api = api.NewAlarmClockClient(conn)

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// AddAlarm sets an alarm. An empty weekday means today on the daemon's clock.
func (c *Client) AddAlarm(ctx context.Context, at, weekday string) (domain.Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.AddAlarm(callCtx, api.EncodeAddRequest(api.AddRequest{Time: at, Weekday: weekday}))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("add alarm: %w", api.FromStatus(err))
	}

	return api.DecodeEntry(resp)
}

// ListAlarms returns every alarm in display order.
func (c *Client) ListAlarms(ctx context.Context) ([]domain.Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.ListAlarms(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", api.FromStatus(err))
	}

	return api.DecodeList(resp)
}

// DeleteAlarm removes the alarm at the 1-based index.
func (c *Client) DeleteAlarm(ctx context.Context, index int) (domain.Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.DeleteAlarm(callCtx, api.EncodeDeleteRequest(api.DeleteRequest{Index: index}))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("delete alarm: %w", api.FromStatus(err))
	}

	return api.DecodeEntry(resp)
}

// SnoozeLatest snoozes the alarm that rang or was added last.
func (c *Client) SnoozeLatest(ctx context.Context) (domain.Entry, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.SnoozeLatest(callCtx, new(emptypb.Empty))
	if err != nil {
		return domain.Entry{}, fmt.Errorf("snooze alarm: %w", api.FromStatus(err))
	}

	return api.DecodeEntry(resp)
}

// WatchFirings calls fn for every firing until ctx is done, the daemon shuts
// down or fn returns an error. It has no call timeout.
func (c *Client) WatchFirings(ctx context.Context, fn func(domain.Ringing) error) error {
	stream, err := c.api.WatchFirings(ctx, new(emptypb.Empty))
	if err != nil {
		return fmt.Errorf("watch firings: %w", api.FromStatus(err))
	}

	for {
		msg, err := stream.Recv()

		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			return nil
		case ctx.Err() != nil:
			return nil
		default:
			return fmt.Errorf("receive firing: %w", api.FromStatus(err))
		}

		ringing, err := api.DecodeRinging(msg)
		if err != nil {
			return fmt.Errorf("decode firing: %w", err)
		}

		if err := fn(ringing); err != nil {
			return err
		}
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

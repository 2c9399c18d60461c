package clock

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ActorMetadataKey carries the "user@host" of the caller.
const ActorMetadataKey = "x-alarm-actor"

// unknownActor is logged when a caller sends no actor.
const unknownActor = "unknown"

// ActorFromContext returns the caller's actor from incoming metadata.
func ActorFromContext(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return unknownActor
	}

	if values := md.Get(ActorMetadataKey); len(values) > 0 && values[0] != "" {
		return values[0]
	}

	return unknownActor
}

// UnaryServerInterceptor scopes the request logger to the method and actor and
// logs the outcome of every call.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", ActorFromContext(ctx))
		started := time.Now()

		resp, err := handler(ctx, req)
		logCall(ctx, started, err)

		return resp, err
	}
}

// StreamServerInterceptor is the streaming counterpart of UnaryServerInterceptor.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := logger.WithKV(ss.Context(), "method", info.FullMethod, "actor", ActorFromContext(ss.Context()))
		started := time.Now()

		err := handler(srv, &loggedStream{ServerStream: ss, ctx: ctx})
		logCall(ctx, started, err)

		return err
	}
}

func logCall(ctx context.Context, started time.Time, err error) {
	code := status.Code(err)
	if err != nil {
		logger.WarnKV(ctx, "Call failed", "code", code.String(), "duration", time.Since(started), "error", err)

		return
	}

	logger.DebugKV(ctx, "Call served", "code", code.String(), "duration", time.Since(started))
}

// loggedStream replaces the stream context with the logger-scoped one.
type loggedStream struct {
	grpc.ServerStream

	//nolint:containedctx // Mirrors grpc.ServerStream.Context.
	ctx context.Context
}

func (s *loggedStream) Context() context.Context {
	return s.ctx
}

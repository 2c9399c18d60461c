//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"fmt"
	"os"
	"os/user"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/clock"
)

// Actor identifies who sends a request.
type Actor struct {
	// Hostname is the machine name.
	Hostname string
	// Username is the OS account name.
	Username string
}

// String renders the actor as "user@host".
func (a Actor) String() string {
	return a.Username + "@" + a.Hostname
}

// DetectActor gathers host and user information for audit trail.
func DetectActor() (Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return Actor{}, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return Actor{}, fmt.Errorf("current user: %w", err)
	}

	return Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// actorUnaryInterceptor attaches the actor to every outgoing unary call.
func actorUnaryInterceptor(actor Actor) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		ctx = metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, actor.String())

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// actorStreamInterceptor attaches the actor to every outgoing stream.
func actorStreamInterceptor(actor Actor) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		ctx = metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, actor.String())

		return streamer(ctx, desc, cc, method, opts...)
	}
}

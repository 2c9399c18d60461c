package clock

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClockService"

// Full method names.
const (
	AddAlarmMethod     = "/" + ServiceName + "/AddAlarm"
	ListAlarmsMethod   = "/" + ServiceName + "/ListAlarms"
	DeleteAlarmMethod  = "/" + ServiceName + "/DeleteAlarm"
	SnoozeLatestMethod = "/" + ServiceName + "/SnoozeLatest"
	WatchFiringsMethod = "/" + ServiceName + "/WatchFirings"
)

// AlarmClockServer is the server API of the alarm clock service.
type AlarmClockServer interface {
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	DeleteAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SnoozeLatest(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	WatchFirings(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ServiceDesc describes the alarm clock service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // grpc-go takes service descriptors by pointer to a package value.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddAlarm",
			Handler:    unaryHandler(AddAlarmMethod, AlarmClockServer.AddAlarm),
		},
		{
			MethodName: "ListAlarms",
			Handler:    unaryHandler(ListAlarmsMethod, AlarmClockServer.ListAlarms),
		},
		{
			MethodName: "DeleteAlarm",
			Handler:    unaryHandler(DeleteAlarmMethod, AlarmClockServer.DeleteAlarm),
		},
		{
			MethodName: "SnoozeLatest",
			Handler:    unaryHandler(SnoozeLatestMethod, AlarmClockServer.SnoozeLatest),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchFirings",
			Handler:       watchFiringsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// RegisterAlarmClockServer registers srv on s.
func RegisterAlarmClockServer(s grpc.ServiceRegistrar, srv AlarmClockServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler, running
// the interceptor chain when one is installed.
func unaryHandler[Req any](
	fullMethod string,
	call func(AlarmClockServer, context.Context, *Req) (*structpb.Struct, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		server, _ := srv.(AlarmClockServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			typed, _ := req.(*Req)

			return call(server, ctx, typed)
		}

		return interceptor(ctx, in, info, handler)
	}
}

func watchFiringsHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(AlarmClockServer)

	return server.WatchFirings(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AlarmClockClient is the client API of the alarm clock service.
type AlarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient returns a client stub over cc.
func NewAlarmClockClient(cc grpc.ClientConnInterface) *AlarmClockClient {
	return &AlarmClockClient{cc: cc}
}

// AddAlarm calls AddAlarmMethod.
func (c *AlarmClockClient) AddAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, AddAlarmMethod, in, opts)
}

// ListAlarms calls ListAlarmsMethod.
func (c *AlarmClockClient) ListAlarms(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, ListAlarmsMethod, in, opts)
}

// DeleteAlarm calls DeleteAlarmMethod.
func (c *AlarmClockClient) DeleteAlarm(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, DeleteAlarmMethod, in, opts)
}

// SnoozeLatest calls SnoozeLatestMethod.
func (c *AlarmClockClient) SnoozeLatest(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, SnoozeLatestMethod, in, opts)
}

// WatchFirings opens the WatchFirings server stream.
func (c *AlarmClockClient) WatchFirings(
	ctx context.Context,
	in *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], WatchFiringsMethod, opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}

	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}

	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}

func invoke[Res any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in any,
	opts []grpc.CallOption,
) (*Res, error) {
	out := new(Res)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

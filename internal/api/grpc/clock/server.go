package clock

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/eventbus"
	"github.com/oshokin/alarm-clock/internal/logger"
)

// Service abstracts the registry operations the transport layer depends on.
type Service interface {
	AddAlarm(ctx context.Context, at alarm.TimeOfDay, day alarm.Weekday) (domain.Entry, error)
	AddAlarmToday(ctx context.Context, at alarm.TimeOfDay) (domain.Entry, error)
	DeleteByIndex(ctx context.Context, index int) (domain.Entry, error)
	SnoozeLatest(ctx context.Context) (domain.Entry, error)
	List(ctx context.Context) []domain.Entry
	Subscribe(buffer int) *eventbus.Subscription[domain.Ringing]
}

// Server implements the AlarmClockService gRPC API.
type Server struct {
	// service provides the registry operations.
	service Service
	// validate checks decoded requests.
	validate *validator.Validate
}

var _ AlarmClockServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// AddAlarm sets an alarm. Without a weekday the alarm is set for today.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	add, err := DecodeAddRequest(req)
	if err != nil {
		return nil, ToStatus(err)
	}

	if err := s.validate.Struct(add); err != nil {
		return nil, ToStatus(fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	at, err := alarm.ParseTimeOfDay(add.Time)
	if err != nil {
		return nil, ToStatus(err)
	}

	var entry domain.Entry

	if add.Weekday == "" {
		entry, err = s.service.AddAlarmToday(ctx, at)
	} else {
		day, parseErr := alarm.ParseWeekday(add.Weekday)
		if parseErr != nil {
			return nil, ToStatus(parseErr)
		}

		entry, err = s.service.AddAlarm(ctx, at, day)
	}

	if err != nil {
		return nil, ToStatus(err)
	}

	return EncodeEntry(entry), nil
}

// ListAlarms returns every alarm in display order.
func (s *Server) ListAlarms(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return EncodeList(s.service.List(ctx)), nil
}

// DeleteAlarm removes the alarm at the requested 1-based index.
func (s *Server) DeleteAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	del, err := DecodeDeleteRequest(req)
	if err != nil {
		return nil, ToStatus(err)
	}

	if err := s.validate.Struct(del); err != nil {
		return nil, ToStatus(fmt.Errorf("%w: %w", ErrInvalidRequest, err))
	}

	entry, err := s.service.DeleteByIndex(ctx, del.Index)
	if err != nil {
		return nil, ToStatus(err)
	}

	return EncodeEntry(entry), nil
}

// SnoozeLatest snoozes the alarm that rang or was added last.
func (s *Server) SnoozeLatest(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	entry, err := s.service.SnoozeLatest(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	return EncodeEntry(entry), nil
}

// WatchFirings streams every firing until the client goes away or the clock
// shuts down.
func (s *Server) WatchFirings(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()

	sub := s.service.Subscribe(0)
	defer sub.Close()

	logger.DebugKV(ctx, "Firing watcher attached")

	for {
		select {
		case <-ctx.Done():
			logger.DebugKV(ctx, "Firing watcher detached")

			return nil
		case ringing, ok := <-sub.C():
			if !ok {
				return ToStatus(ErrUnavailable)
			}

			if err := stream.Send(EncodeRinging(ringing)); err != nil {
				return fmt.Errorf("send firing: %w", err)
			}
		}
	}
}

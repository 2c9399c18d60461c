package clock

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// ErrInvalidRequest is the fallback sentinel for InvalidArgument statuses.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnavailable is the sentinel for Unavailable statuses.
var ErrUnavailable = errors.New("alarm clock is unavailable")

// codeSentinels lists, per code, the sentinels a status may carry. The first
// one is the fallback when the message names none of the others.
//
//nolint:gochecknoglobals // Static lookup table.
var codeSentinels = map[codes.Code][]error{
	codes.AlreadyExists:      {alarm.ErrDuplicateAlarm},
	codes.NotFound:           {alarm.ErrNotFound},
	codes.ResourceExhausted:  {alarm.ErrSnoozeLimitReached},
	codes.FailedPrecondition: {alarm.ErrNoTargetAlarm},
	codes.InvalidArgument: {
		ErrInvalidRequest, alarm.ErrInvalidTime, alarm.ErrInvalidWeekday, ErrMalformedMessage,
	},
	codes.Unavailable: {ErrUnavailable, scheduler.ErrStopped},
}

// ToStatus converts an error from the clock into a gRPC status error.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	return status.Error(codeOf(err), err.Error())
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, alarm.ErrDuplicateAlarm):
		return codes.AlreadyExists
	case errors.Is(err, alarm.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, alarm.ErrSnoozeLimitReached):
		return codes.ResourceExhausted
	case errors.Is(err, alarm.ErrNoTargetAlarm):
		return codes.FailedPrecondition
	case errors.Is(err, alarm.ErrInvalidTime),
		errors.Is(err, alarm.ErrInvalidWeekday),
		errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ErrMalformedMessage):
		return codes.InvalidArgument
	case errors.Is(err, scheduler.ErrStopped), errors.Is(err, ErrUnavailable):
		return codes.Unavailable
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		return codes.Internal
	}
}

// FromStatus converts a gRPC status error back into an error that matches the
// domain sentinels with errors.Is. Its message is the server's message.
// Errors with codes that carry no sentinel are returned unchanged.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	candidates, ok := codeSentinels[st.Code()]
	if !ok {
		return err
	}

	sentinel := candidates[0]

	for _, candidate := range candidates[1:] {
		if strings.Contains(st.Message(), candidate.Error()) {
			sentinel = candidate

			break
		}
	}

	return &remoteError{sentinel: sentinel, message: st.Message()}
}

// remoteError carries a server-side message and the sentinel it maps to.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.sentinel }

package clock

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Struct field names.
const (
	fieldIndex       = "index"
	fieldID          = "id"
	fieldTime        = "time"
	fieldWeekday     = "weekday"
	fieldSnoozeCount = "snooze_count"
	fieldSnoozeLimit = "snooze_limit"
	fieldNext        = "next"
	fieldAlarms      = "alarms"
	fieldEntry       = "entry"
	fieldAt          = "at"
)

// ErrMalformedMessage is returned when a message lacks a field or holds one of the wrong kind.
var ErrMalformedMessage = errors.New("malformed message")

// AddRequest is the decoded AddAlarm request.
type AddRequest struct {
	// Time is the "HH:MM" alarm time.
	Time string `validate:"required,max=5"`
	// Weekday is an optional weekday name; empty means today.
	Weekday string `validate:"omitempty,alpha"`
}

// DeleteRequest is the decoded DeleteAlarm request.
type DeleteRequest struct {
	// Index is the 1-based display index.
	Index int `validate:"gte=1"`
}

// EncodeAddRequest builds an AddAlarm request.
func EncodeAddRequest(req AddRequest) *structpb.Struct {
	fields := map[string]*structpb.Value{
		fieldTime: structpb.NewStringValue(req.Time),
	}

	if req.Weekday != "" {
		fields[fieldWeekday] = structpb.NewStringValue(req.Weekday)
	}

	return &structpb.Struct{Fields: fields}
}

// DecodeAddRequest reads an AddAlarm request. The weekday field is optional.
func DecodeAddRequest(s *structpb.Struct) (AddRequest, error) {
	at, err := stringField(s, fieldTime)
	if err != nil {
		return AddRequest{}, err
	}

	req := AddRequest{Time: at}

	if _, ok := s.GetFields()[fieldWeekday]; ok {
		if req.Weekday, err = stringField(s, fieldWeekday); err != nil {
			return AddRequest{}, err
		}
	}

	return req, nil
}

// EncodeDeleteRequest builds a DeleteAlarm request.
func EncodeDeleteRequest(req DeleteRequest) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldIndex: structpb.NewNumberValue(float64(req.Index)),
	}}
}

// DecodeDeleteRequest reads a DeleteAlarm request.
func DecodeDeleteRequest(s *structpb.Struct) (DeleteRequest, error) {
	index, err := intField(s, fieldIndex)
	if err != nil {
		return DeleteRequest{}, err
	}

	return DeleteRequest{Index: index}, nil
}

// EncodeEntry renders an entry as a Struct.
func EncodeEntry(e domain.Entry) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldIndex:       structpb.NewNumberValue(float64(e.Index)),
		fieldID:          structpb.NewStringValue(e.Alarm.ID.String()),
		fieldTime:        structpb.NewStringValue(e.Alarm.Time.String()),
		fieldWeekday:     structpb.NewStringValue(e.Alarm.Weekday.String()),
		fieldSnoozeCount: structpb.NewNumberValue(float64(e.Alarm.SnoozeCount)),
		fieldSnoozeLimit: structpb.NewNumberValue(alarm.SnoozeLimit),
		fieldNext:        structpb.NewStringValue(e.Next.Format(time.RFC3339)),
	}}
}

// DecodeEntry parses a Struct produced by EncodeEntry.
func DecodeEntry(s *structpb.Struct) (domain.Entry, error) {
	var (
		entry domain.Entry
		err   error
	)

	if entry.Index, err = intField(s, fieldIndex); err != nil {
		return domain.Entry{}, err
	}

	id, err := stringField(s, fieldID)
	if err != nil {
		return domain.Entry{}, err
	}

	if entry.Alarm.ID, err = uuid.Parse(id); err != nil {
		return domain.Entry{}, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, fieldID, err)
	}

	at, err := stringField(s, fieldTime)
	if err != nil {
		return domain.Entry{}, err
	}

	if entry.Alarm.Time, err = alarm.ParseTimeOfDay(at); err != nil {
		return domain.Entry{}, err
	}

	day, err := stringField(s, fieldWeekday)
	if err != nil {
		return domain.Entry{}, err
	}

	if entry.Alarm.Weekday, err = alarm.ParseWeekday(day); err != nil {
		return domain.Entry{}, err
	}

	if entry.Alarm.SnoozeCount, err = intField(s, fieldSnoozeCount); err != nil {
		return domain.Entry{}, err
	}

	if entry.Next, err = timeField(s, fieldNext); err != nil {
		return domain.Entry{}, err
	}

	return entry, nil
}

// EncodeList renders entries as {alarms: [entry]}.
func EncodeList(entries []domain.Entry) *structpb.Struct {
	values := make([]*structpb.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, structpb.NewStructValue(EncodeEntry(e)))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAlarms: structpb.NewListValue(&structpb.ListValue{Values: values}),
	}}
}

// DecodeList parses a Struct produced by EncodeList.
func DecodeList(s *structpb.Struct) ([]domain.Entry, error) {
	v, ok := s.GetFields()[fieldAlarms]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedMessage, fieldAlarms)
	}

	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: %s is not a list", ErrMalformedMessage, fieldAlarms)
	}

	entries := make([]domain.Entry, 0, len(list.GetValues()))

	for i, item := range list.GetValues() {
		entry, err := DecodeEntry(item.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("alarm %d: %w", i+1, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// EncodeRinging renders a firing as {entry, at}.
func EncodeRinging(r domain.Ringing) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldEntry: structpb.NewStructValue(EncodeEntry(r.Entry)),
		fieldAt:    structpb.NewStringValue(r.At.Format(time.RFC3339)),
	}}
}

// DecodeRinging parses a Struct produced by EncodeRinging.
func DecodeRinging(s *structpb.Struct) (domain.Ringing, error) {
	v, ok := s.GetFields()[fieldEntry]
	if !ok || v.GetStructValue() == nil {
		return domain.Ringing{}, fmt.Errorf("%w: missing %s", ErrMalformedMessage, fieldEntry)
	}

	entry, err := DecodeEntry(v.GetStructValue())
	if err != nil {
		return domain.Ringing{}, err
	}

	at, err := timeField(s, fieldAt)
	if err != nil {
		return domain.Ringing{}, err
	}

	return domain.Ringing{Entry: entry, At: at}, nil
}

func stringField(s *structpb.Struct, name string) (string, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedMessage, name)
	}

	str, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedMessage, name)
	}

	return str.StringValue, nil
}

func intField(s *structpb.Struct, name string) (int, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", ErrMalformedMessage, name)
	}

	num, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || num.NumberValue != math.Trunc(num.NumberValue) ||
		num.NumberValue > math.MaxInt32 || num.NumberValue < math.MinInt32 {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrMalformedMessage, name)
	}

	return int(num.NumberValue), nil
}

func timeField(s *structpb.Struct, name string) (time.Time, error) {
	str, err := stringField(s, name)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, name, err)
	}

	return t, nil
}

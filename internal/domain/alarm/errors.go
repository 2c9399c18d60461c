package alarm

import "errors"

var (
	// ErrDuplicateAlarm is returned when an alarm with the same key is already set.
	ErrDuplicateAlarm = errors.New("alarm already exists")
	// ErrNotFound is returned when an alarm index or key does not exist.
	ErrNotFound = errors.New("alarm not found")
	// ErrSnoozeLimitReached is returned when the alarm has used all of its snoozes.
	ErrSnoozeLimitReached = errors.New("snooze limit reached")
	// ErrNoTargetAlarm is returned when there is no latest alarm to snooze.
	ErrNoTargetAlarm = errors.New("no alarm to snooze")
	// ErrInvalidTime is returned when a time-of-day string is not HH:MM.
	ErrInvalidTime = errors.New("invalid time format, use HH:MM")
	// ErrInvalidWeekday is returned when a weekday name is not recognized.
	ErrInvalidWeekday = errors.New("invalid day of the week")
)

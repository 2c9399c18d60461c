package alarm

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	hoursInDay     = 24
	minutesInHour  = 60
	maxHourDigits  = 2
	minuteDigits   = 2
	timePartsCount = 2
)

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	// Hour is in [0, 23].
	Hour int
	// Minute is in [0, 59].
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string. The hour may have one or two
// digits, the minute must have exactly two.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != timePartsCount {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hourPart, minutePart := parts[0], parts[1]
	if len(hourPart) == 0 || len(hourPart) > maxHourDigits || len(minutePart) != minuteDigits {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	hour, err := strconv.Atoi(hourPart)
	if err != nil || hour < 0 || hour >= hoursInDay {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	minute, err := strconv.Atoi(minutePart)
	if err != nil || minute < 0 || minute >= minutesInHour {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// MustParseTimeOfDay is like ParseTimeOfDay but panics on error.
// It is meant for constants and tests.
func MustParseTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}

	return t
}

// String renders the time as zero-padded "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// addMinutes advances t by n minutes (0 <= n < 60). The hour wraps modulo 24
// and wrapped reports whether midnight was crossed.
func (t TimeOfDay) addMinutes(n int) (next TimeOfDay, wrapped bool) {
	next = TimeOfDay{Hour: t.Hour, Minute: t.Minute + n}
	if next.Minute >= minutesInHour {
		next.Minute -= minutesInHour
		next.Hour++
	}

	if next.Hour >= hoursInDay {
		next.Hour %= hoursInDay
		wrapped = true
	}

	return next, wrapped
}

package alarm

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week. Its zero value is Sunday, matching time.Weekday.
type Weekday time.Weekday

// Days of the week.
const (
	Sunday    = Weekday(time.Sunday)
	Monday    = Weekday(time.Monday)
	Tuesday   = Weekday(time.Tuesday)
	Wednesday = Weekday(time.Wednesday)
	Thursday  = Weekday(time.Thursday)
	Friday    = Weekday(time.Friday)
	Saturday  = Weekday(time.Saturday)
)

// daysInWeek is the length of the recurrence period in days.
const daysInWeek = 7

// weekdayNames maps canonical lowercase names to weekdays.
//
//nolint:gochecknoglobals // Lookup table.
var weekdayNames = map[string]Weekday{
	"sunday":    Sunday,
	"monday":    Monday,
	"tuesday":   Tuesday,
	"wednesday": Wednesday,
	"thursday":  Thursday,
	"friday":    Friday,
	"saturday":  Saturday,
}

// ParseWeekday converts a case-insensitive English weekday name into a Weekday.
// Only full names are accepted.
func ParseWeekday(name string) (Weekday, error) {
	day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Sunday, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
	}

	return day, nil
}

// WeekdayOf returns the weekday of t in t's location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday())
}

// String returns the canonical lowercase name, e.g. "monday".
func (d Weekday) String() string {
	return strings.ToLower(time.Weekday(d).String())
}

// Next returns the following day, wrapping Saturday to Sunday.
func (d Weekday) Next() Weekday {
	return Weekday((int(d) + 1) % daysInWeek)
}

// Valid reports whether d is one of the seven days.
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

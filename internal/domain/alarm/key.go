package alarm

import (
	"fmt"
	"time"
)

// Key identifies an alarm's schedule slot. No two alarms in a clock share a key.
type Key struct {
	Time    TimeOfDay
	Weekday Weekday
}

// String renders the key as "HH:MM-weekday".
func (k Key) String() string {
	return fmt.Sprintf("%s-%s", k.Time, k.Weekday)
}

// Next returns the first instant strictly after now, in now's location, that
// falls on k.Weekday at k.Time with zero seconds. When today is the target
// weekday and the minute has already begun, the result is one week out.
func (k Key) Next(now time.Time) time.Time {
	days := (int(k.Weekday) - int(now.Weekday()) + daysInWeek) % daysInWeek

	next := time.Date(now.Year(), now.Month(), now.Day()+days, k.Time.Hour, k.Time.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+days+daysInWeek, k.Time.Hour, k.Time.Minute, 0, 0, now.Location())
	}

	return next
}

package alarm

import "github.com/google/uuid"

const (
	// SnoozeLimit is the number of times an alarm may be snoozed.
	SnoozeLimit = 3
	// SnoozeMinutes is how far a single snooze pushes the alarm.
	SnoozeMinutes = 5
)

// Alarm is a weekly recurring alarm.
type Alarm struct {
	// ID is assigned at creation and survives snoozes.
	ID uuid.UUID
	// Time is the current ring time; snoozing moves it.
	Time TimeOfDay
	// Weekday is the current ring day.
	Weekday Weekday
	// SnoozeCount is the number of snoozes used so far.
	SnoozeCount int
}

// New creates an alarm with a fresh ID and no snoozes used.
func New(at TimeOfDay, day Weekday) *Alarm {
	return &Alarm{
		ID:      uuid.New(),
		Time:    at,
		Weekday: day,
	}
}

// Key returns the alarm's current schedule slot.
func (a *Alarm) Key() Key {
	return Key{Time: a.Time, Weekday: a.Weekday}
}

// CanSnooze reports whether another snooze is allowed.
func (a *Alarm) CanSnooze() bool {
	return a.SnoozeCount < SnoozeLimit
}

// Snooze moves the alarm SnoozeMinutes forward and counts the snooze.
// Crossing midnight moves the alarm to the following weekday, so 23:58 on
// monday becomes 00:03 on tuesday. At the limit it returns false and leaves
// the alarm untouched.
func (a *Alarm) Snooze() bool {
	if !a.CanSnooze() {
		return false
	}

	next, wrapped := a.Time.addMinutes(SnoozeMinutes)
	if wrapped {
		a.Weekday = a.Weekday.Next()
	}

	a.Time = next
	a.SnoozeCount++

	return true
}

// Clone returns a copy of the alarm.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

package clock

import (
	"fmt"
	"time"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Entry is a snapshot of one alarm as shown to callers.
type Entry struct {
	// Index is the 1-based display position.
	Index int
	// Alarm is a copy of the alarm state.
	Alarm alarm.Alarm
	// Next is the upcoming ring instant.
	Next time.Time
}

// String renders the entry as "index: Alarm set for HH:MM on weekday".
func (e Entry) String() string {
	return fmt.Sprintf("%d: Alarm set for %s on %s", e.Index, e.Alarm.Time, e.Alarm.Weekday)
}

// Ringing is published when an alarm rings.
type Ringing struct {
	// Entry is the alarm that rang, as of the firing.
	Entry Entry
	// At is the firing instant.
	At time.Time
}

package client

import (
	"fmt"
	"io"
	"time"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Layouts used in rendered output.
const (
	clockLayout = "15:04:05"
	dateLayout  = "Mon 2006-01-02 15:04"
)

// RenderAdded prints the confirmation of a new alarm.
func RenderAdded(w io.Writer, e clock.Entry) {
	_, _ = fmt.Fprintf(w, "Alarm set for %s on %s, next ring %s\n",
		e.Alarm.Time, e.Alarm.Weekday, e.Next.Format(dateLayout))
}

// RenderDeleted prints the confirmation of a removed alarm.
func RenderDeleted(w io.Writer, e clock.Entry) {
	_, _ = fmt.Fprintf(w, "Alarm for %s on %s deleted\n", e.Alarm.Time, e.Alarm.Weekday)
}

// RenderSnoozed prints the new slot of a snoozed alarm.
func RenderSnoozed(w io.Writer, e clock.Entry) {
	_, _ = fmt.Fprintf(w, "Latest alarm snoozed to %s on %s (%d of %d snoozes used)\n",
		e.Alarm.Time, e.Alarm.Weekday, e.Alarm.SnoozeCount, alarm.SnoozeLimit)
}

// RenderList prints every alarm in display order.
func RenderList(w io.Writer, entries []clock.Entry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No alarms set.")

		return
	}

	_, _ = fmt.Fprintln(w, "List of all set alarms:")

	for _, e := range entries {
		_, _ = fmt.Fprintln(w, e.String())
	}
}

// RenderRinging prints the wake-up banner for a firing.
func RenderRinging(w io.Writer, r clock.Ringing) {
	_, _ = fmt.Fprintf(w, "z...z...z Alarm is ringing for %s on %s. Type 'snooze' to snooze. z...z...z..\n",
		r.Entry.Alarm.Time, r.Entry.Alarm.Weekday)
}

// RenderTime prints a wall clock reading.
func RenderTime(w io.Writer, now time.Time) {
	_, _ = fmt.Fprintln(w, now.Format(clockLayout))
}

// RenderError prints an error without inspecting it.
func RenderError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}

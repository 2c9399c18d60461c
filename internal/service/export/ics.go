package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"

	"github.com/oshokin/alarm-clock/internal/clock"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

// floatingDateTime is a DATE-TIME without zone: it rings at the same wall
// clock time wherever the calendar is opened.
const floatingDateTime = "20060102T150405"

// ErrNoAlarms is returned when there is nothing to export.
var ErrNoAlarms = errors.New("no alarms to export")

// byDay maps weekdays to RRULE BYDAY codes.
//
//nolint:gochecknoglobals // Static lookup table.
var byDay = map[alarm.Weekday]string{
	alarm.Sunday:    "SU",
	alarm.Monday:    "MO",
	alarm.Tuesday:   "TU",
	alarm.Wednesday: "WE",
	alarm.Thursday:  "TH",
	alarm.Friday:    "FR",
	alarm.Saturday:  "SA",
}

// ProductID identifies the calendar producer.
func ProductID() string {
	return "-//oshokin//alarm-clock " + version.Short() + "//EN"
}

// Calendar builds a calendar holding one VEVENT per entry. stamp is written as
// DTSTAMP on every event.
func Calendar(entries []clock.Entry, stamp time.Time) (*ical.Calendar, error) {
	if len(entries) == 0 {
		return nil, ErrNoAlarms
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, ProductID())
	cal.Props.SetText(ical.PropVersion, "2.0")

	for _, entry := range entries {
		code, ok := byDay[entry.Alarm.Weekday]
		if !ok {
			return nil, fmt.Errorf("%w: %d", alarm.ErrInvalidWeekday, entry.Alarm.Weekday)
		}

		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, entry.Alarm.ID.String())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		event.Props.Set(rawProp(ical.PropDateTimeStart, entry.Next.Format(floatingDateTime)))
		event.Props.SetText(ical.PropSummary, "Alarm "+entry.Alarm.Time.String())
		event.Props.Set(rawProp(ical.PropRecurrenceRule, "FREQ=WEEKLY;BYDAY="+code))
		event.Props.Set(rawProp(ical.PropDuration, "PT0S"))

		cal.Children = append(cal.Children, event.Component)
	}

	return cal, nil
}

// WriteICS encodes the entries as an iCalendar stream to w.
func WriteICS(w io.Writer, entries []clock.Entry, stamp time.Time) error {
	cal, err := Calendar(entries, stamp)
	if err != nil {
		return err
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}

	return nil
}

// rawProp builds a property whose value is written without TEXT escaping.
func rawProp(name, value string) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = value

	return prop
}

// Package export renders alarms as an iCalendar feed: one weekly recurring
// event per alarm, starting at its next occurrence.
package export

// Package alarm contains core domain types for the alarm clock.
//
// It defines TimeOfDay and Weekday (the two halves of an alarm Key), the
// Alarm entity with its snooze state machine, the next-occurrence
// computation used by the scheduler, and the error taxonomy shared by every
// layer above it.
package alarm

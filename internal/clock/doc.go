// Package clock is the alarm registry.
//
// A Clock owns the ordered alarm collection, enforces key uniqueness, routes
// add, delete and snooze operations to the scheduler, and tracks the latest
// alarm (most recently added or most recently rung) as the target of a bare
// snooze. Firings from the scheduler are re-published as Ringing events after
// the latest alarm has been updated, so a subscriber that reacts to a ringing
// alarm by snoozing always snoozes that alarm.
package clock

// Package scheduler arms one weekly recurring job per alarm key.
//
// Jobs run on a robfig/cron engine, but no cron expression is ever built:
// each job carries a cron.Schedule whose Next is alarm.Key.Next, so the
// firing instant is computed directly from the key. Firings are published on
// an event bus owned by the Scheduler. A job that was unscheduled or replaced
// cannot publish once Unschedule or Schedule has returned.
package scheduler

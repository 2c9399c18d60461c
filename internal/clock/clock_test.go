package clock

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// friday10am is 2026-10-23 10:00 UTC, a friday.
//
//nolint:gochecknoglobals // Test fixture.
var friday10am = time.Date(2026, time.October, 23, 10, 0, 0, 0, time.UTC)

// newTestClock returns a clock frozen at friday10am on top of a real, unstarted scheduler.
func newTestClock(t *testing.T) (*Clock, *scheduler.Scheduler) {
	t.Helper()

	s := scheduler.New(context.Background(), scheduler.WithLocation(time.UTC))
	c := New(s, WithNow(func() time.Time { return friday10am }))

	t.Cleanup(func() {
		require.NoError(t, c.Close(context.Background()))
	})

	return c, s
}

func tod(s string) alarm.TimeOfDay {
	return alarm.MustParseTimeOfDay(s)
}

// TestAddAlarm_RejectsDuplicate verifies a second add with the same key changes nothing.
func TestAddAlarm_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	first, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)
	require.Equal(t, 1, first.Index)

	_, err = c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.ErrorIs(t, err, alarm.ErrDuplicateAlarm)
	require.Contains(t, err.Error(), "already exists")

	require.Equal(t, 1, c.Len())
	require.Len(t, s.Keys(), 1)

	latest, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, first.Alarm.ID, latest.Alarm.ID)
}

// TestAddAlarm_ReturnsNextOccurrence checks the entry carries the upcoming ring instant.
func TestAddAlarm_ReturnsNextOccurrence(t *testing.T) {
	t.Parallel()

	c, s := newTestClock(t)

	entry, err := c.AddAlarm(context.Background(), tod("07:00"), alarm.Monday)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, time.October, 26, 7, 0, 0, 0, time.UTC), entry.Next)
	require.Equal(t, "1: Alarm set for 07:00 on monday", entry.String())
	require.True(t, s.Has(entry.Alarm.Key()))
}

// TestAddAlarmToday_PassedTimeRingsNextWeek covers a bare "set 09:00" on a friday after 09:00.
func TestAddAlarmToday_PassedTimeRingsNextWeek(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _ := newTestClock(t)

	passed, err := c.AddAlarmToday(ctx, tod("09:00"))
	require.NoError(t, err)
	require.Equal(t, alarm.Friday, passed.Alarm.Weekday)
	require.Equal(t, time.Date(2026, time.October, 30, 9, 0, 0, 0, time.UTC), passed.Next)

	upcoming, err := c.AddAlarmToday(ctx, tod("11:00"))
	require.NoError(t, err)
	require.Equal(t, alarm.Friday, upcoming.Alarm.Weekday)
	require.Equal(t, time.Date(2026, time.October, 23, 11, 0, 0, 0, time.UTC), upcoming.Next)

	_, err = c.AddAlarmToday(ctx, tod("09:00"))
	require.ErrorIs(t, err, alarm.ErrDuplicateAlarm)
}

// TestDeleteByIndex_Reindexes removes exactly the addressed alarm and re-numbers the rest.
func TestDeleteByIndex_Reindexes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	for _, at := range []string{"06:00", "07:00", "08:00"} {
		_, err := c.AddAlarm(ctx, tod(at), alarm.Tuesday)
		require.NoError(t, err)
	}

	removed, err := c.DeleteByIndex(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, "07:00", removed.Alarm.Time.String())
	require.False(t, s.Has(removed.Alarm.Key()))

	entries := c.List(ctx)
	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Index)
	require.Equal(t, "06:00", entries[0].Alarm.Time.String())
	require.Equal(t, 2, entries[1].Index)
	require.Equal(t, "08:00", entries[1].Alarm.Time.String())

	for _, index := range []int{0, 3, -1} {
		_, err = c.DeleteByIndex(ctx, index)
		require.ErrorIs(t, err, alarm.ErrNotFound)
	}

	require.Equal(t, 2, c.Len())
	require.Len(t, s.Keys(), 2)
}

// TestDelete_ByKey removes by slot and reports unknown slots.
func TestDelete_ByKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	entry, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	_, err = c.Delete(ctx, alarm.Key{Time: tod("07:01"), Weekday: alarm.Monday})
	require.ErrorIs(t, err, alarm.ErrNotFound)

	_, err = c.Delete(ctx, entry.Alarm.Key())
	require.NoError(t, err)
	require.Empty(t, c.List(ctx))
	require.Empty(t, s.Keys())
}

// TestDelete_ClearsLatestOnlyForTarget checks latest is invalidated only when its alarm goes away.
func TestDelete_ClearsLatestOnlyForTarget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _ := newTestClock(t)

	_, err := c.AddAlarm(ctx, tod("06:00"), alarm.Monday)
	require.NoError(t, err)

	_, err = c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	// Removing a non-latest alarm keeps the target.
	_, err = c.DeleteByIndex(ctx, 1)
	require.NoError(t, err)

	latest, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, "07:00", latest.Alarm.Time.String())
	require.Equal(t, 1, latest.Index)

	// Removing the latest alarm clears the target.
	_, err = c.DeleteByIndex(ctx, 1)
	require.NoError(t, err)

	_, ok = c.Latest()
	require.False(t, ok)

	_, err = c.SnoozeLatest(ctx)
	require.ErrorIs(t, err, alarm.ErrNoTargetAlarm)
}

// TestSnoozeLatest_NothingToSnooze covers the empty registry.
func TestSnoozeLatest_NothingToSnooze(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(t)

	_, err := c.SnoozeLatest(context.Background())
	require.ErrorIs(t, err, alarm.ErrNoTargetAlarm)
	require.EqualError(t, err, "no alarm to snooze")
}

// TestSnoozeLatest_MovesJob ensures the scheduler holds the new slot and not the old one.
func TestSnoozeLatest_MovesJob(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	added, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	snoozed, err := c.SnoozeLatest(ctx)
	require.NoError(t, err)
	require.Equal(t, "07:05", snoozed.Alarm.Time.String())
	require.Equal(t, 1, snoozed.Alarm.SnoozeCount)
	require.Equal(t, added.Alarm.ID, snoozed.Alarm.ID)
	require.Equal(t, time.Date(2026, time.October, 26, 7, 5, 0, 0, time.UTC), snoozed.Next)

	require.False(t, s.Has(added.Alarm.Key()))
	require.True(t, s.Has(snoozed.Alarm.Key()))
	require.Equal(t, []alarm.Key{snoozed.Alarm.Key()}, s.Keys())
}

// TestSnoozeLatest_Limit checks the fourth snooze fails and leaves the alarm as it was.
func TestSnoozeLatest_Limit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	_, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	for range alarm.SnoozeLimit {
		_, err = c.SnoozeLatest(ctx)
		require.NoError(t, err)
	}

	_, err = c.SnoozeLatest(ctx)
	require.ErrorIs(t, err, alarm.ErrSnoozeLimitReached)

	entries := c.List(ctx)
	require.Len(t, entries, 1)
	require.Equal(t, "07:15", entries[0].Alarm.Time.String())
	require.Equal(t, alarm.SnoozeLimit, entries[0].Alarm.SnoozeCount)
	require.Equal(t, []alarm.Key{entries[0].Alarm.Key()}, s.Keys())
}

// TestSnoozeLatest_RejectsOccupiedSlot keeps keys unique when a snooze would land on another alarm.
func TestSnoozeLatest_RejectsOccupiedSlot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	_, err := c.AddAlarm(ctx, tod("07:05"), alarm.Monday)
	require.NoError(t, err)

	target, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	_, err = c.SnoozeLatest(ctx)
	require.ErrorIs(t, err, alarm.ErrDuplicateAlarm)

	latest, ok := c.Latest()
	require.True(t, ok)
	require.Equal(t, target.Alarm, latest.Alarm)
	require.Len(t, s.Keys(), 2)
}

// TestSnoozeLatest_WrapsPastMidnight checks the snoozed slot moves to the next day.
func TestSnoozeLatest_WrapsPastMidnight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, s := newTestClock(t)

	_, err := c.AddAlarm(ctx, tod("23:58"), alarm.Sunday)
	require.NoError(t, err)

	snoozed, err := c.SnoozeLatest(ctx)
	require.NoError(t, err)
	require.Equal(t, "00:03", snoozed.Alarm.Time.String())
	require.Equal(t, alarm.Monday, snoozed.Alarm.Weekday)
	require.Equal(t, time.Date(2026, time.October, 26, 0, 3, 0, 0, time.UTC), snoozed.Next)
	require.Equal(t, []alarm.Key{{Time: tod("00:03"), Weekday: alarm.Monday}}, s.Keys())
}

// TestList_ReturnsCopies ensures callers cannot mutate registry state through entries.
func TestList_ReturnsCopies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c, _ := newTestClock(t)

	require.Empty(t, c.List(ctx))

	_, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	entries := c.List(ctx)
	entries[0].Alarm.Snooze()

	require.Zero(t, c.List(ctx)[0].Alarm.SnoozeCount)
}

// TestRing_IgnoresUnknownKey covers a firing that lost the race against a delete.
func TestRing_IgnoresUnknownKey(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(t)

	_, ok := c.ring(scheduler.Firing{Key: alarm.Key{Time: tod("05:00"), Weekday: alarm.Monday}, At: friday10am})
	require.False(t, ok)
}

// TestClock_RingingTargetsSnooze runs the full flow on a fake clock: an alarm rings,
// becomes the snooze target, is snoozed and rings again five minutes later.
func TestClock_RingingTargetsSnooze(t *testing.T) {
	t.Parallel()

	// The synctest bubble starts at 2000-01-01 00:00:00 UTC, a saturday.
	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		s := scheduler.New(ctx, scheduler.WithLocation(time.UTC))
		c := New(s, WithLocation(time.UTC))
		c.Start(ctx)

		events := c.Subscribe(4)

		early, err := c.AddAlarm(ctx, tod("00:05"), alarm.Saturday)
		require.NoError(t, err)

		// The later add becomes latest until the early one rings.
		_, err = c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
		require.NoError(t, err)

		time.Sleep(6 * time.Minute)
		synctest.Wait()

		ringing := <-events.C()
		require.Equal(t, early.Alarm.ID, ringing.Entry.Alarm.ID)
		require.Equal(t, 1, ringing.Entry.Index)
		require.True(t, ringing.At.Equal(time.Date(2000, time.January, 1, 0, 5, 0, 0, time.UTC)))

		latest, ok := c.Latest()
		require.True(t, ok)
		require.Equal(t, early.Alarm.ID, latest.Alarm.ID)

		snoozed, err := c.SnoozeLatest(ctx)
		require.NoError(t, err)
		require.Equal(t, "00:10", snoozed.Alarm.Time.String())

		time.Sleep(5 * time.Minute)
		synctest.Wait()

		again := <-events.C()
		require.Equal(t, early.Alarm.ID, again.Entry.Alarm.ID)
		require.Equal(t, "00:10", again.Entry.Alarm.Time.String())

		require.NoError(t, c.Close(ctx))

		_, open := <-events.C()
		require.False(t, open)
	})
}

// TestClose_WithoutStart verifies Close works on a clock that never started and blocks later starts.
func TestClose_WithoutStart(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := scheduler.New(ctx)
	c := New(s)

	_, err := c.AddAlarm(ctx, tod("07:00"), alarm.Monday)
	require.NoError(t, err)

	require.NoError(t, c.Close(ctx))
	require.Empty(t, s.Keys())

	c.Start(ctx)

	_, err = c.AddAlarm(ctx, tod("08:00"), alarm.Monday)
	require.ErrorIs(t, err, scheduler.ErrStopped)
}

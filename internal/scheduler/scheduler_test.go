package scheduler

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// The synctest bubble starts at 2000-01-01 00:00:00 UTC, which is a saturday.

func key(at string, day alarm.Weekday) alarm.Key {
	return alarm.Key{Time: alarm.MustParseTimeOfDay(at), Weekday: day}
}

// TestScheduler_FiresAndRearms checks a job rings at its instant and again one week later.
func TestScheduler_FiresAndRearms(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := New(context.Background(), WithLocation(time.UTC))
		sub := s.Subscribe(4)
		k := key("00:01", alarm.Saturday)

		next, err := s.Schedule(k)
		require.NoError(t, err)
		require.True(t, next.Equal(time.Date(2000, time.January, 1, 0, 1, 0, 0, time.UTC)))

		s.Start()

		// Wait past the instant and let the callbacks settle.
		time.Sleep(2 * time.Minute)
		synctest.Wait()

		select {
		case f := <-sub.C():
			require.Equal(t, k, f.Key)
			require.True(t, f.At.Equal(next))
		default:
			t.Fatal("expected a firing")
		}

		// The job stays live for next week.
		require.True(t, s.Has(k))

		rearmed, ok := s.Next(k)
		require.True(t, ok)
		require.True(t, rearmed.Equal(time.Date(2000, time.January, 8, 0, 1, 0, 0, time.UTC)))

		time.Sleep(7 * 24 * time.Hour)
		synctest.Wait()

		require.Len(t, sub.C(), 1)
		require.Equal(t, 2, s.Fired(k))

		require.NoError(t, s.Stop(context.Background()))
	})
}

// TestScheduler_UnscheduleSuppressesFiring ensures a cancelled job never publishes.
func TestScheduler_UnscheduleSuppressesFiring(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := New(context.Background(), WithLocation(time.UTC))
		sub := s.Subscribe(4)
		k := key("00:05", alarm.Saturday)

		_, err := s.Schedule(k)
		require.NoError(t, err)

		s.Start()

		time.Sleep(time.Minute)
		require.True(t, s.Unschedule(k))
		require.False(t, s.Unschedule(k))
		require.False(t, s.Has(k))

		time.Sleep(10 * time.Minute)
		synctest.Wait()

		require.Empty(t, sub.C())

		require.NoError(t, s.Stop(context.Background()))
	})
}

// TestScheduler_ScheduleReplacesExistingJob ensures rescheduling a key never yields two live jobs.
func TestScheduler_ScheduleReplacesExistingJob(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := New(context.Background(), WithLocation(time.UTC))
		sub := s.Subscribe(4)
		k := key("00:10", alarm.Saturday)

		s.Start()

		_, err := s.Schedule(k)
		require.NoError(t, err)

		_, err = s.Schedule(k)
		require.NoError(t, err)

		require.Equal(t, []alarm.Key{k}, s.Keys())

		time.Sleep(15 * time.Minute)
		synctest.Wait()

		require.Len(t, sub.C(), 1)

		require.NoError(t, s.Stop(context.Background()))
	})
}

// TestScheduler_RekeyMovesTheFiring mirrors a snooze: the old slot is cancelled and only the new one rings.
func TestScheduler_RekeyMovesTheFiring(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := New(context.Background(), WithLocation(time.UTC))
		sub := s.Subscribe(4)
		oldKey := key("00:01", alarm.Saturday)
		newKey := key("00:06", alarm.Saturday)

		_, err := s.Schedule(oldKey)
		require.NoError(t, err)

		s.Start()

		require.True(t, s.Unschedule(oldKey))

		_, err = s.Schedule(newKey)
		require.NoError(t, err)

		require.False(t, s.Has(oldKey))
		require.True(t, s.Has(newKey))

		time.Sleep(3 * time.Minute)
		synctest.Wait()
		require.Empty(t, sub.C())

		time.Sleep(5 * time.Minute)
		synctest.Wait()

		f := <-sub.C()
		require.Equal(t, newKey, f.Key)

		require.NoError(t, s.Stop(context.Background()))
	})
}

// TestScheduler_StopCancelsEverything verifies Stop clears jobs, closes subscriptions and is idempotent.
func TestScheduler_StopCancelsEverything(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), WithLocation(time.UTC))
	sub := s.Subscribe(0)

	_, err := s.Schedule(key("07:00", alarm.Monday))
	require.NoError(t, err)

	_, err = s.Schedule(key("08:00", alarm.Tuesday))
	require.NoError(t, err)

	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))

	require.Empty(t, s.Keys())

	_, ok := <-sub.C()
	require.False(t, ok)

	_, err = s.Schedule(key("09:00", alarm.Monday))
	require.ErrorIs(t, err, ErrStopped)

	// Start after Stop stays a no-op.
	s.Start()
	require.Empty(t, s.Keys())
}

// TestScheduler_KeysAreOrdered checks Keys sorts by weekday then time.
func TestScheduler_KeysAreOrdered(t *testing.T) {
	t.Parallel()

	s := New(context.Background(), WithLocation(time.UTC))

	defer func() {
		_ = s.Stop(context.Background())
	}()

	for _, k := range []alarm.Key{
		key("09:00", alarm.Wednesday),
		key("07:30", alarm.Monday),
		key("07:00", alarm.Monday),
		key("23:00", alarm.Sunday),
	} {
		_, err := s.Schedule(k)
		require.NoError(t, err)
	}

	require.Equal(t, []alarm.Key{
		key("23:00", alarm.Sunday),
		key("07:00", alarm.Monday),
		key("07:30", alarm.Monday),
		key("09:00", alarm.Wednesday),
	}, s.Keys())

	_, ok := s.Next(key("10:00", alarm.Friday))
	require.False(t, ok)
	require.Zero(t, s.Fired(key("07:00", alarm.Monday)))
}

package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSnooze_UpToLimit verifies snoozes succeed SnoozeLimit times and the next attempt changes nothing.
func TestSnooze_UpToLimit(t *testing.T) {
	t.Parallel()

	a := New(MustParseTimeOfDay("07:00"), Monday)

	for i := 1; i <= SnoozeLimit; i++ {
		require.True(t, a.Snooze())
		require.Equal(t, i, a.SnoozeCount)
	}

	require.Equal(t, "07:15", a.Time.String())

	before := *a

	require.False(t, a.Snooze())
	require.Equal(t, before, *a)
}

// TestSnooze_CarriesMinutes covers the minute overflow into the hour.
func TestSnooze_CarriesMinutes(t *testing.T) {
	t.Parallel()

	a := New(MustParseTimeOfDay("06:57"), Friday)

	require.True(t, a.Snooze())
	require.Equal(t, "07:02", a.Time.String())
	require.Equal(t, Friday, a.Weekday)
}

// TestSnooze_WrapsPastMidnight checks 23:58 becomes 00:03 on the following day.
func TestSnooze_WrapsPastMidnight(t *testing.T) {
	t.Parallel()

	a := New(MustParseTimeOfDay("23:58"), Saturday)

	require.True(t, a.Snooze())
	require.Equal(t, "00:03", a.Time.String())
	require.Equal(t, Sunday, a.Weekday)
	require.Equal(t, 1, a.SnoozeCount)
}

// TestAlarmClone verifies that Clone returns an independent copy and handles nil safely.
func TestAlarmClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*Alarm)(nil).Clone())

	a := New(MustParseTimeOfDay("08:30"), Tuesday)
	b := a.Clone()

	require.Equal(t, a, b)
	require.NotSame(t, a, b)

	b.Snooze()
	require.Zero(t, a.SnoozeCount)
	require.Equal(t, a.ID, b.ID)
}

// TestNew_AssignsUniqueIDs ensures two alarms never share an ID.
func TestNew_AssignsUniqueIDs(t *testing.T) {
	t.Parallel()

	a := New(MustParseTimeOfDay("08:30"), Tuesday)
	b := New(MustParseTimeOfDay("08:30"), Tuesday)

	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.Key(), b.Key())
}

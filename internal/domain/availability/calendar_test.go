package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentora/internal/domain/shared/daterange"
)

var now = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func rng(t *testing.T, fromDay, toDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(now.AddDate(0, 0, fromDay), now.AddDate(0, 0, toDay))
	require.NoError(t, err)
	return dr
}

func TestReserveRefusesOverlap(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.Reserve(rng(t, 10, 15), "bk-1", now))

	err := c.Reserve(rng(t, 12, 17), "bk-2", now)
	require.ErrorIs(t, err, ErrOverlappingRange)
	require.Len(t, c.Blocks, 1)
}

func TestBackToBackStaysAllowed(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.Reserve(rng(t, 10, 15), "bk-1", now))
	require.NoError(t, c.Reserve(rng(t, 15, 20), "bk-2", now))
	require.Len(t, c.Blocks, 2)
}

func TestHostBlockCountsAsOccupied(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.BlockRange(rng(t, 10, 12), "maintenance", now))
	require.False(t, c.CanReserve(rng(t, 11, 14)))
	require.True(t, c.CanReserve(rng(t, 12, 14)))
}

func TestReleaseFreesRange(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.Reserve(rng(t, 10, 15), "bk-1", now))
	require.False(t, c.CanReserve(rng(t, 10, 15)))

	require.NoError(t, c.Release("bk-1", now))
	require.True(t, c.CanReserve(rng(t, 10, 15)))

	require.ErrorIs(t, c.Release("bk-1", now), ErrRangeNotFound)
}

func TestOverbookingRecordsEvent(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.Reserve(rng(t, 10, 15), "bk-1", now))
	c.ClearEvents()

	_ = c.Reserve(rng(t, 10, 15), "bk-2", now)
	events := c.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, "availability.overbooking_prevented", events[0].EventName())
}

func TestBlockedDatesWithinWindow(t *testing.T) {
	c := NewCalendar("prop-1")
	require.NoError(t, c.Reserve(rng(t, 10, 13), "bk-1", now))
	require.NoError(t, c.BlockRange(rng(t, 20, 22), "maintenance", now))

	dates := c.BlockedDates(now.AddDate(0, 0, 11), now.AddDate(0, 0, 21))
	require.Len(t, dates, 3)
	require.Equal(t, now.AddDate(0, 0, 11), dates[0])
	require.Equal(t, now.AddDate(0, 0, 12), dates[1])
	require.Equal(t, now.AddDate(0, 0, 20), dates[2])
}

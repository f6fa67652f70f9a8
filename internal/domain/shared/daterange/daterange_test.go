package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewRejectsInvertedRange(t *testing.T) {
	_, err := New(day(2026, 9, 10), day(2026, 9, 10))
	require.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(day(2026, 9, 10), day(2026, 9, 8))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestNewTruncatesToUTCMidnight(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	dr, err := New(time.Date(2026, 9, 10, 15, 30, 0, 0, loc), time.Date(2026, 9, 12, 9, 0, 0, 0, loc))
	require.NoError(t, err)
	require.Equal(t, day(2026, 9, 10), dr.CheckIn)
	require.Equal(t, day(2026, 9, 12), dr.CheckOut)
	require.Equal(t, 2, dr.Nights())
}

func TestOverlapsIsHalfOpen(t *testing.T) {
	a, err := New(day(2026, 9, 10), day(2026, 9, 15))
	require.NoError(t, err)

	cases := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"identical", day(2026, 9, 10), day(2026, 9, 15), true},
		{"contained", day(2026, 9, 11), day(2026, 9, 13), true},
		{"straddles start", day(2026, 9, 8), day(2026, 9, 11), true},
		{"straddles end", day(2026, 9, 14), day(2026, 9, 20), true},
		{"checkout meets checkin", day(2026, 9, 5), day(2026, 9, 10), false},
		{"checkin meets checkout", day(2026, 9, 15), day(2026, 9, 20), false},
		{"disjoint before", day(2026, 9, 1), day(2026, 9, 5), false},
		{"disjoint after", day(2026, 9, 20), day(2026, 9, 25), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := New(tc.from, tc.to)
			require.NoError(t, err)
			require.Equal(t, tc.want, a.Overlaps(b))
			require.Equal(t, tc.want, b.Overlaps(a))
		})
	}
}

func TestNewMonths(t *testing.T) {
	dr, err := NewMonths(day(2026, 1, 15), 3)
	require.NoError(t, err)
	require.Equal(t, day(2026, 1, 15), dr.CheckIn)
	require.Equal(t, day(2026, 4, 15), dr.CheckOut)

	_, err = NewMonths(day(2026, 1, 15), 0)
	require.ErrorIs(t, err, ErrInvalidMonths)
}

func TestDatesExcludesCheckout(t *testing.T) {
	dr, err := New(day(2026, 9, 10), day(2026, 9, 13))
	require.NoError(t, err)
	dates := dr.Dates()
	require.Len(t, dates, 3)
	require.Equal(t, day(2026, 9, 10), dates[0])
	require.Equal(t, day(2026, 9, 12), dates[2])
}

func TestContainsDate(t *testing.T) {
	dr, err := New(day(2026, 9, 10), day(2026, 9, 13))
	require.NoError(t, err)
	require.True(t, dr.ContainsDate(day(2026, 9, 10)))
	require.True(t, dr.ContainsDate(day(2026, 9, 12)))
	require.False(t, dr.ContainsDate(day(2026, 9, 13)))
}

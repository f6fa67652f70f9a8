package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainbooking "rentora/internal/domain/booking"
	"rentora/internal/domain/pricing"
	domainproperty "rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func confirmedBooking(t *testing.T, id string, fromDay, toDay int) *domainbooking.Booking {
	t.Helper()
	dr, err := daterange.New(testNow.AddDate(0, 0, fromDay), testNow.AddDate(0, 0, toDay))
	require.NoError(t, err)
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:         domainbooking.BookingID(id),
		PropertyID: "prop-1",
		GuestID:    "guest-" + id,
		HostID:     "host-1",
		Range:      dr,
		Kind:       domainproperty.KindDaily,
		Guests:     2,
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	quote := pricing.Quote{Total: money.Must(500, "USD")}
	require.NoError(t, b.Summarize(quote, b.GuestID, testNow))
	require.NoError(t, b.ConfirmCash(b.GuestID, testNow))
	return b
}

func TestReserveRejectsOverlap(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	require.NoError(t, f.Reservations.Reserve(ctx, confirmedBooking(t, "bk-1", 10, 15)))
	err := f.Reservations.Reserve(ctx, confirmedBooking(t, "bk-2", 12, 17))
	require.ErrorIs(t, err, domainbooking.ErrConflict)

	// Back-to-back is fine under half-open ranges.
	require.NoError(t, f.Reservations.Reserve(ctx, confirmedBooking(t, "bk-3", 15, 20)))
}

func TestReleaseFreesReservedNights(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	b := confirmedBooking(t, "bk-1", 10, 15)
	require.NoError(t, f.Reservations.Reserve(ctx, b))

	require.NoError(t, b.Cancel(b.GuestID, "plans changed", testNow))
	require.NoError(t, f.Reservations.Release(ctx, b))

	stored, err := f.BookingRepo.ByID(ctx, "bk-1")
	require.NoError(t, err)
	require.Equal(t, domainbooking.StateCancelled, stored.State)

	require.NoError(t, f.Reservations.Reserve(ctx, confirmedBooking(t, "bk-2", 10, 15)))
}

func TestReleaseToleratesMissingRange(t *testing.T) {
	f := NewFactory()
	b := confirmedBooking(t, "bk-1", 10, 15)
	require.NoError(t, b.Cancel(b.GuestID, "", testNow))
	require.NoError(t, f.Reservations.Release(context.Background(), b))
}

func TestConcurrentReservesExactlyOneWins(t *testing.T) {
	f := NewFactory()
	ctx := context.Background()

	const workers = 8
	errs := make([]error, workers)
	bookings := make([]*domainbooking.Booking, workers)
	for i := range bookings {
		bookings[i] = confirmedBooking(t, fmt.Sprintf("bk-%d", i), 10, 15)
	}

	var wg sync.WaitGroup
	for i := range bookings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = f.Reservations.Reserve(ctx, bookings[i])
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, domainbooking.ErrConflict)
		}
	}
	require.Equal(t, 1, wins)

	calendar, err := f.CalendarRepo.Calendar(ctx, "prop-1")
	require.NoError(t, err)
	require.Len(t, calendar.Blocks, 1)
}

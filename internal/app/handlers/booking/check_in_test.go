package booking_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	bookingapp "rentora/internal/app/handlers/booking"
)

func TestCheckInTransitionsAndRecordsEvent(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)
	_, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Method: "CASH",
	})
	require.NoError(t, err)

	handler := bookingapp.NewCheckInHandler(f.outbox, fixedClock)
	result, err := handler.Handle(f.unitCtx(t), bookingapp.CheckInCommand{
		BookingID: "bk-1", Actor: "guest-1",
	})
	require.NoError(t, err)
	require.Equal(t, "CHECKED_IN", result.State)

	var names []string
	for _, rec := range f.outbox.Pending() {
		names = append(names, rec.Name)
	}
	require.Contains(t, names, "booking.checkin_completed")
}

func TestCheckInRejectsStranger(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")

	handler := bookingapp.NewCheckInHandler(f.outbox, fixedClock)
	_, err := handler.Handle(f.unitCtx(t), bookingapp.CheckInCommand{
		BookingID: "bk-1", Actor: "someone-else",
	})
	require.ErrorIs(t, err, bookingapp.ErrNotBookingParty)
}

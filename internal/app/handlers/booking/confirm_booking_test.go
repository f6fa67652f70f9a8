package booking_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	bookingapp "rentora/internal/app/handlers/booking"
	"rentora/internal/app/policies"
	domainbooking "rentora/internal/domain/booking"
	"rentora/internal/domain/shared/money"
)

type stubGateway struct {
	calls int
	fail  error
}

func (g *stubGateway) Initiate(ctx context.Context, amount money.Money, metadata map[string]string) (policies.PaymentInitiation, error) {
	g.calls++
	if g.fail != nil {
		return policies.PaymentInitiation{}, g.fail
	}
	return policies.PaymentInitiation{TransactionRef: "tx-1", RedirectURL: "https://pay.example/tx-1"}, nil
}

func summarizedBooking(t *testing.T, f *fixture, id string) {
	t.Helper()
	cmd := baseCommand()
	cmd.BookingID = id
	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.NoError(t, err)
}

func summarizedBookingFor(t *testing.T, f *fixture, id, guest string) {
	t.Helper()
	cmd := baseCommand()
	cmd.BookingID = id
	cmd.GuestID = guest
	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.NoError(t, err)
}

func TestConfirmCashReservesImmediately(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	gateway := &stubGateway{}
	confirm := bookingapp.NewConfirmBookingHandler(gateway, f.outbox, testLogger(), fixedClock)

	result, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1",
		Actor:     "guest-1",
		Method:    "CASH",
	})
	require.NoError(t, err)
	require.Equal(t, "CONFIRMED", result.Booking.State)
	require.Empty(t, result.RedirectURL)
	require.Zero(t, gateway.calls)

	// The calendar now holds the nights.
	cmd := baseCommand()
	calendar, err := f.stores.CalendarRepo.Calendar(context.Background(), "prop-1")
	require.NoError(t, err)
	blocked, err := daterangeOf(cmd)
	require.NoError(t, err)
	require.False(t, calendar.CanReserve(blocked))
}

func TestConfirmCardGoesThroughGateway(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	gateway := &stubGateway{}
	confirm := bookingapp.NewConfirmBookingHandler(gateway, f.outbox, testLogger(), fixedClock)

	result, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1",
		Actor:     "guest-1",
		Method:    "CARD",
	})
	require.NoError(t, err)
	require.Equal(t, "PAYMENT_PENDING", result.Booking.State)
	require.Equal(t, "https://pay.example/tx-1", result.RedirectURL)
	require.Equal(t, 1, gateway.calls)

	stored, err := f.stores.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, "tx-1", stored.PaymentRef)
}

func TestConfirmRejectsNonOwner(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)

	_, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1",
		Actor:     "someone-else",
		Method:    "CASH",
	})
	require.ErrorIs(t, err, bookingapp.ErrNotBookingOwner)
}

func TestConfirmCardSkipsGatewayWhenDatesTaken(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	summarizedBookingFor(t, f, "bk-2", "guest-2")
	gateway := &stubGateway{}
	confirm := bookingapp.NewConfirmBookingHandler(gateway, f.outbox, testLogger(), fixedClock)

	_, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Method: "CASH",
	})
	require.NoError(t, err)

	_, err = confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-2", Actor: "guest-2", Method: "CARD",
	})
	require.ErrorIs(t, err, domainbooking.ErrConflict)
	require.Zero(t, gateway.calls)
}

func TestRacingConfirmationsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")

	second := baseCommand()
	second.BookingID = "bk-2"
	second.GuestID = "guest-2"
	_, err := f.handler.Handle(f.unitCtx(t), second)
	require.NoError(t, err)

	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)

	attempts := []bookingapp.ConfirmBookingCommand{
		{BookingID: "bk-1", Actor: "guest-1", Method: "CASH"},
		{BookingID: "bk-2", Actor: "guest-2", Method: "CASH"},
	}
	ctxs := []context.Context{f.unitCtx(t), f.unitCtx(t)}

	errs := make([]error, len(attempts))
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = confirm.Handle(ctxs[i], attempts[i])
		}(i)
	}
	wg.Wait()

	var conflicts, wins int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			require.ErrorIs(t, err, domainbooking.ErrConflict)
			conflicts++
		}
	}
	require.Equal(t, 1, wins)
	require.Equal(t, 1, conflicts)
}

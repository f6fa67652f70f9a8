package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	bookingapp "rentora/internal/app/handlers/booking"
	domainbooking "rentora/internal/domain/booking"
	"rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
	"rentora/internal/domain/shared/money"
)

func addProperty(t *testing.T, f *fixture, id string) {
	t.Helper()
	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:            domainproperty.PropertyID(id),
		Host:          "host-1",
		Title:         "Second place",
		GuestCapacity: 4,
		Terms: domainproperty.RentalTerms{
			Daily: &domainproperty.DailyTerms{
				NightlyRate: money.Must(100, "USD"),
				MinNights:   3,
			},
		},
		Now: testNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.stores.PropertyRepo.Save(context.Background(), prop))
}

func TestCancelReleasesCalendarAndPersists(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")
	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)
	_, err := confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Method: "CASH",
	})
	require.NoError(t, err)

	cancel := bookingapp.NewCancelBookingHandler(f.outbox, testLogger(), fixedClock)
	result, err := cancel.Handle(f.unitCtx(t), bookingapp.CancelBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Reason: "plans changed",
	})
	require.NoError(t, err)
	require.Equal(t, "CANCELLED", result.State)

	// The nights are free again.
	_, err = f.handler.Handle(f.unitCtx(t), func() bookingapp.RequestBookingCommand {
		cmd := baseCommand()
		cmd.BookingID = "bk-2"
		return cmd
	}())
	require.NoError(t, err)
}

func TestCancelRejectsStranger(t *testing.T) {
	f := newFixture(t)
	summarizedBooking(t, f, "bk-1")

	cancel := bookingapp.NewCancelBookingHandler(f.outbox, testLogger(), fixedClock)
	_, err := cancel.Handle(f.unitCtx(t), bookingapp.CancelBookingCommand{
		BookingID: "bk-1", Actor: "someone-else",
	})
	require.ErrorIs(t, err, bookingapp.ErrNotBookingParty)
}

func TestPromoHeldWhileBookingActiveFreedByCancellation(t *testing.T) {
	f := newFixture(t)
	addProperty(t, f, "prop-2")
	require.NoError(t, f.stores.Promo.Put(context.Background(), promo.Code{Code: "WELCOME20", Percent: 20, GrantedAt: testNow}))
	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)

	first := baseCommand()
	first.PromoCode = "WELCOME20"
	first.StrictPromo = true
	_, err := f.handler.Handle(f.unitCtx(t), first)
	require.NoError(t, err)
	_, err = confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Method: "CASH",
	})
	require.NoError(t, err)

	// Same guest, same dates, another property: the code is held.
	overlapping := baseCommand()
	overlapping.BookingID = "bk-2"
	overlapping.PropertyID = "prop-2"
	overlapping.PromoCode = "WELCOME20"
	overlapping.StrictPromo = true
	_, err = f.handler.Handle(f.unitCtx(t), overlapping)
	require.ErrorIs(t, err, promo.ErrCodeConsumed)

	// A non-overlapping later stay may reuse it while the first is active.
	later := baseCommand()
	later.BookingID = "bk-3"
	later.PropertyID = "prop-2"
	later.CheckIn = testNow.AddDate(0, 0, 30)
	later.CheckOut = testNow.AddDate(0, 0, 35)
	later.PromoCode = "WELCOME20"
	later.StrictPromo = true
	result, err := f.handler.Handle(f.unitCtx(t), later)
	require.NoError(t, err)
	require.Equal(t, int64(115), result.Quote.Discount.Amount)

	// Cancelling the first booking releases the redemption.
	cancel := bookingapp.NewCancelBookingHandler(f.outbox, testLogger(), fixedClock)
	_, err = cancel.Handle(f.unitCtx(t), bookingapp.CancelBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Reason: "plans changed",
	})
	require.NoError(t, err)

	retry := baseCommand()
	retry.BookingID = "bk-4"
	retry.PropertyID = "prop-2"
	retry.PromoCode = "WELCOME20"
	retry.StrictPromo = true
	result, err = f.handler.Handle(f.unitCtx(t), retry)
	require.NoError(t, err)
	require.Equal(t, int64(115), result.Quote.Discount.Amount)
	require.Equal(t, int64(460), result.Quote.Total.Amount)
}

func TestPromoFreedByPaymentFailure(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Promo.Put(context.Background(), promo.Code{Code: "WELCOME20", Percent: 20, GrantedAt: testNow}))
	confirm := bookingapp.NewConfirmBookingHandler(&stubGateway{}, f.outbox, testLogger(), fixedClock)

	first := baseCommand()
	first.PromoCode = "WELCOME20"
	first.StrictPromo = true
	_, err := f.handler.Handle(f.unitCtx(t), first)
	require.NoError(t, err)
	_, err = confirm.Handle(f.unitCtx(t), bookingapp.ConfirmBookingCommand{
		BookingID: "bk-1", Actor: "guest-1", Method: "CARD",
	})
	require.NoError(t, err)

	apply := bookingapp.NewApplyPaymentResultHandler(f.outbox, testLogger(), fixedClock)
	result, err := apply.Handle(f.unitCtx(t), bookingapp.ApplyPaymentResultCommand{
		TransactionRef: "tx-1", Status: "FAILED", Reason: "card declined",
	})
	require.NoError(t, err)
	require.Equal(t, "CANCELLED", result.State)

	// The code and the dates are both usable again.
	retry := baseCommand()
	retry.BookingID = "bk-2"
	retry.PromoCode = "WELCOME20"
	retry.StrictPromo = true
	quoted, err := f.handler.Handle(f.unitCtx(t), retry)
	require.NoError(t, err)
	require.Equal(t, int64(115), quoted.Quote.Discount.Amount)

	stored, err := f.stores.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, domainbooking.StateCancelled, stored.State)
}

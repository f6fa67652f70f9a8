package booking_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bookingapp "rentora/internal/app/handlers/booking"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
	domainpricing "rentora/internal/domain/pricing"
	"rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
	"rentora/internal/infra/storage/memory"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock() time.Time { return testNow }

type fixture struct {
	stores  memory.Factory
	handler *bookingapp.RequestBookingHandler
	outbox  *memory.Outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stores := memory.NewFactory()
	box := memory.NewOutbox()

	prop, err := domainproperty.New(domainproperty.CreateParams{
		ID:            "prop-1",
		Host:          "host-1",
		Title:         "Loft by the river",
		GuestCapacity: 4,
		Terms: domainproperty.RentalTerms{
			Daily: &domainproperty.DailyTerms{
				NightlyRate: money.Must(100, "USD"),
				MinNights:   3,
			},
			Monthly: &domainproperty.MonthlyTerms{
				MonthlyRate: money.Must(6000, "USD"),
				MinMonths:   1,
			},
		},
		Now: testNow,
	})
	require.NoError(t, err)
	require.NoError(t, stores.PropertyRepo.Save(context.Background(), prop))

	return &fixture{
		stores:  stores,
		handler: bookingapp.NewRequestBookingHandler(domainpricing.Engine{}, box, nil, testLogger(), fixedClock),
		outbox:  box,
	}
}

func (f *fixture) unitCtx(t *testing.T) context.Context {
	t.Helper()
	unit, err := f.stores.Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	return uow.ContextWithUnitOfWork(context.Background(), unit)
}

func daterangeOf(cmd bookingapp.RequestBookingCommand) (daterange.DateRange, error) {
	return daterange.New(cmd.CheckIn, cmd.CheckOut)
}

func baseCommand() bookingapp.RequestBookingCommand {
	return bookingapp.RequestBookingCommand{
		BookingID:  "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		Kind:       "DAILY",
		CheckIn:    testNow.AddDate(0, 0, 10),
		CheckOut:   testNow.AddDate(0, 0, 15),
		Guests:     2,
	}
}

func TestRequestBookingCreatesSummary(t *testing.T) {
	f := newFixture(t)
	result, err := f.handler.Handle(f.unitCtx(t), baseCommand())
	require.NoError(t, err)

	require.Equal(t, "SUMMARY", result.State)
	require.Equal(t, int64(500), result.Quote.Base.Amount)
	require.Equal(t, int64(575), result.Quote.Total.Amount)

	stored, err := f.stores.BookingRepo.ByID(context.Background(), "bk-1")
	require.NoError(t, err)
	require.Equal(t, domainbooking.StateSummary, stored.State)
}

func TestRequestBookingMinStayViolation(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.CheckOut = cmd.CheckIn.AddDate(0, 0, 2) // min nights is 3

	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.ErrorIs(t, err, domainbooking.ErrMinStayNotMet)

	_, err = f.stores.BookingRepo.ByID(context.Background(), "bk-1")
	require.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestRequestBookingCapacityViolation(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.Guests = 5

	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.ErrorIs(t, err, domainbooking.ErrCapacityExceeded)
}

func TestRequestBookingPastCheckIn(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.CheckIn = testNow.AddDate(0, 0, -3)
	cmd.CheckOut = testNow.AddDate(0, 0, 2)

	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.ErrorIs(t, err, domainbooking.ErrCheckInPast)
}

func TestRequestBookingAdvisoryConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	calendar, err := f.stores.CalendarRepo.Calendar(ctx, "prop-1")
	require.NoError(t, err)
	cmd := baseCommand()
	blocked, err := daterangeOf(cmd)
	require.NoError(t, err)
	require.NoError(t, calendar.Reserve(blocked, "other", testNow))
	require.NoError(t, f.stores.CalendarRepo.Save(ctx, calendar))

	_, err = f.handler.Handle(f.unitCtx(t), baseCommand())
	require.ErrorIs(t, err, domainbooking.ErrConflict)
}

func TestRequestBookingMonthlyQuote(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.Kind = "MONTHLY"
	cmd.Months = 3
	cmd.CheckOut = time.Time{}

	result, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(6900), result.Quote.Total.Amount)
	require.Equal(t, int64(20700), result.Quote.ContractValue.Amount)
}

func TestRequestBookingBadPromoFallsBack(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.PromoCode = "NOPE"

	result, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(0), result.Quote.Discount.Amount)
	require.Empty(t, result.Quote.PromoCode)
}

func TestRequestBookingStrictPromoFails(t *testing.T) {
	f := newFixture(t)
	cmd := baseCommand()
	cmd.PromoCode = "NOPE"
	cmd.StrictPromo = true

	_, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.ErrorIs(t, err, promo.ErrCodeNotFound)
}

func TestRequestBookingAppliesPromo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Promo.Put(context.Background(), promo.Code{Code: "WELCOME20", Percent: 20, GrantedAt: testNow}))
	cmd := baseCommand()
	cmd.PromoCode = "WELCOME20"

	result, err := f.handler.Handle(f.unitCtx(t), cmd)
	require.NoError(t, err)
	require.Equal(t, int64(115), result.Quote.Discount.Amount)
	require.Equal(t, int64(460), result.Quote.Total.Amount)
}

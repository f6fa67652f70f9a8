package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentora/internal/domain/pricing"
	"rentora/internal/domain/property"
	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func stay(from, to time.Time) daterange.DateRange {
	dr, err := daterange.New(from, to)
	if err != nil {
		panic(err)
	}
	return dr
}

func newDraft(t *testing.T, dr daterange.DateRange) *Booking {
	t.Helper()
	b, err := NewBooking(CreateParams{
		ID:         "bk-1",
		PropertyID: "prop-1",
		GuestID:    "guest-1",
		HostID:     "host-1",
		Range:      dr,
		Kind:       property.KindDaily,
		Guests:     2,
		CreatedAt:  now,
	})
	require.NoError(t, err)
	return b
}

func quoteOf(total int64) pricing.Quote {
	return pricing.Quote{Total: money.Must(total, "USD")}
}

func TestNewBookingStartsAsDraft(t *testing.T) {
	b := newDraft(t, stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15)))
	require.Equal(t, StateDraft, b.State)
	require.Empty(t, b.Audit)
}

func TestSummarizeRequiresPositiveTotal(t *testing.T) {
	b := newDraft(t, stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15)))
	require.ErrorIs(t, b.Summarize(quoteOf(0), "guest-1", now), ErrZeroTotal)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.Equal(t, StateSummary, b.State)
}

func TestCardFlowReachesConfirmed(t *testing.T) {
	b := newDraft(t, stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15)))
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))

	require.ErrorIs(t, b.InitiatePayment("", "guest-1", now), ErrPaymentRefRequired)
	require.NoError(t, b.InitiatePayment("tx-99", "guest-1", now))
	require.Equal(t, StatePaymentPending, b.State)
	require.Equal(t, "tx-99", b.PaymentRef)

	require.NoError(t, b.ConfirmPayment("gateway", now))
	require.Equal(t, StateConfirmed, b.State)
}

func TestCashFlowSkipsPayment(t *testing.T) {
	b := newDraft(t, stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15)))
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.ConfirmCash("guest-1", now))
	require.Equal(t, StateConfirmed, b.State)
}

func TestIllegalTransitionsRejected(t *testing.T) {
	b := newDraft(t, stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15)))
	require.ErrorIs(t, b.ConfirmCash("guest-1", now), ErrInvalidState)
	require.ErrorIs(t, b.ConfirmPayment("gateway", now), ErrInvalidState)
	require.ErrorIs(t, b.CheckIn("guest-1", now), ErrInvalidState)
	require.ErrorIs(t, b.Cancel("guest-1", "", now), ErrInvalidState)
}

func TestCancelInsideWindowRefused(t *testing.T) {
	// Check-in only two hours away.
	dr := stay(now.Add(2*time.Hour), now.AddDate(0, 0, 5))
	b := newDraft(t, dr)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.ConfirmCash("guest-1", now))

	require.ErrorIs(t, b.Cancel("guest-1", "plans changed", now), ErrCancellationWindowClosed)
	require.Equal(t, StateConfirmed, b.State)
}

func TestCancelOutsideWindowSucceeds(t *testing.T) {
	dr := stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15))
	b := newDraft(t, dr)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.ConfirmCash("guest-1", now))

	require.NoError(t, b.Cancel("guest-1", "plans changed", now))
	require.Equal(t, StateCancelled, b.State)

	last := b.Audit[len(b.Audit)-1]
	require.Equal(t, "guest-1", last.Actor)
	require.Equal(t, StateConfirmed, last.From)
	require.Equal(t, StateCancelled, last.To)
	require.Equal(t, "plans changed", last.Reason)
}

func TestExpireBypassesCancellationWindow(t *testing.T) {
	dr := stay(now.Add(2*time.Hour), now.AddDate(0, 0, 5))
	b := newDraft(t, dr)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.InitiatePayment("tx-1", "guest-1", now))

	require.NoError(t, b.Expire("payment window elapsed", now))
	require.Equal(t, StateCancelled, b.State)
	require.Equal(t, "system", b.Audit[len(b.Audit)-1].Actor)
}

func TestCompleteOnlyAfterCheckout(t *testing.T) {
	dr := stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15))
	b := newDraft(t, dr)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.ConfirmCash("guest-1", now))
	require.NoError(t, b.CheckIn("guest-1", dr.CheckIn))

	require.ErrorIs(t, b.Complete(dr.CheckIn.AddDate(0, 0, 1)), ErrStayNotEnded)
	require.NoError(t, b.Complete(dr.CheckOut))
	require.Equal(t, StateCompleted, b.State)
}

func TestTerminalStatesAreFinal(t *testing.T) {
	dr := stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 15))
	b := newDraft(t, dr)
	require.NoError(t, b.Summarize(quoteOf(500), "guest-1", now))
	require.NoError(t, b.ConfirmCash("guest-1", now))
	require.NoError(t, b.Cancel("guest-1", "", now))

	require.ErrorIs(t, b.Cancel("guest-1", "", now), ErrInvalidState)
	require.ErrorIs(t, b.ConfirmPayment("gateway", now), ErrInvalidState)
	require.ErrorIs(t, b.Complete(dr.CheckOut), ErrInvalidState)
}

func TestValidateSelection(t *testing.T) {
	prop, err := property.New(property.CreateParams{
		ID:            "prop-1",
		Host:          "host-1",
		GuestCapacity: 4,
		Terms: property.RentalTerms{Daily: &property.DailyTerms{
			NightlyRate: money.Must(100, "USD"),
			MinNights:   3,
		}},
		Now: now,
	})
	require.NoError(t, err)

	short := stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 12))
	long := stay(now.AddDate(0, 0, 10), now.AddDate(0, 0, 14))

	require.ErrorIs(t, ValidateSelection(prop, property.KindDaily, short, 0, 2), ErrMinStayNotMet)
	require.ErrorIs(t, ValidateSelection(prop, property.KindDaily, long, 0, 5), ErrCapacityExceeded)
	require.ErrorIs(t, ValidateSelection(prop, property.KindMonthly, long, 2, 2), property.ErrKindNotSupported)
	require.NoError(t, ValidateSelection(prop, property.KindDaily, long, 0, 4))
}

func TestValidateCheckInRejectsPast(t *testing.T) {
	past := stay(now.AddDate(0, 0, -2), now.AddDate(0, 0, 3))
	require.ErrorIs(t, ValidateCheckIn(past, now), ErrCheckInPast)

	today := stay(daterange.Day(now), now.AddDate(0, 0, 3))
	require.NoError(t, ValidateCheckIn(today, now))
}

func TestActiveStates(t *testing.T) {
	require.True(t, StatePaymentPending.Active())
	require.True(t, StateConfirmed.Active())
	require.True(t, StateCheckedIn.Active())
	require.False(t, StateDraft.Active())
	require.False(t, StateSummary.Active())
	require.False(t, StateCancelled.Active())
	require.False(t, StateCompleted.Active())
}

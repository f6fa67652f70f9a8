package booking

import (
	"context"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/policies"
	"rentora/internal/app/uow"
)

// ApplyPaymentResultCommand reacts to a gateway callback. Success confirms
// the booking; failure or expiry cancels it and frees the calendar.
type ApplyPaymentResultCommand struct {
	TransactionRef string `validate:"required"`
	Status         string `validate:"required,oneof=SUCCEEDED FAILED EXPIRED"`
	Reason         string
}

func (ApplyPaymentResultCommand) Key() string { return "booking.payment_result" }

type ApplyPaymentResultHandler struct {
	box   appoutbox.Outbox
	log   *slog.Logger
	clock func() time.Time
}

func NewApplyPaymentResultHandler(box appoutbox.Outbox, log *slog.Logger, clock func() time.Time) *ApplyPaymentResultHandler {
	if clock == nil {
		clock = time.Now
	}
	return &ApplyPaymentResultHandler{box: box, log: log, clock: clock}
}

func (h *ApplyPaymentResultHandler) Handle(ctx context.Context, cmd ApplyPaymentResultCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()

	b, err := unit.Bookings().ByPaymentRef(ctx, cmd.TransactionRef)
	if err != nil {
		return nil, err
	}

	switch policies.PaymentStatus(cmd.Status) {
	case policies.PaymentSucceeded:
		if err := b.ConfirmPayment("gateway", now); err != nil {
			return nil, err
		}
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
	default:
		reason := cmd.Reason
		if reason == "" {
			reason = "payment " + string(cmd.Status)
		}
		if err := b.Expire(reason, now); err != nil {
			return nil, err
		}
		if err := unit.Reservations().Release(ctx, b); err != nil {
			return nil, err
		}
		if b.Quote.PromoCode != "" {
			if err := unit.Promos().ReleaseRedemption(ctx, b.Quote.PromoCode, b.GuestID, string(b.ID)); err != nil {
				return nil, err
			}
		}
	}

	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	result := dto.NewBooking(b)
	return &result, nil
}

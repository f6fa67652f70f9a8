package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
)

var ErrNotBookingParty = errors.New("booking: actor is neither guest nor host")

// CancelBookingCommand cancels a booking on behalf of the guest or host.
// Cancellation is free only while check-in is further away than the
// free-cancellation window.
type CancelBookingCommand struct {
	BookingID  string `validate:"required"`
	Actor      string `validate:"required"`
	Reason     string
	RequestKey string
}

func (CancelBookingCommand) Key() string { return "booking.cancel" }

func (c CancelBookingCommand) IdempotencyKey() string { return c.RequestKey }

func (c CancelBookingCommand) ResultPrototype() any { return &dto.Booking{} }

type CancelBookingHandler struct {
	box   appoutbox.Outbox
	log   *slog.Logger
	clock func() time.Time
}

func NewCancelBookingHandler(box appoutbox.Outbox, log *slog.Logger, clock func() time.Time) *CancelBookingHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CancelBookingHandler{box: box, log: log, clock: clock}
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	now := h.clock()

	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.Actor != b.GuestID && cmd.Actor != string(b.HostID) {
		return nil, ErrNotBookingParty
	}

	wasActive := b.State.Active()
	if err := b.Cancel(cmd.Actor, cmd.Reason, now); err != nil {
		return nil, err
	}

	if wasActive {
		if err := unit.Reservations().Release(ctx, b); err != nil {
			return nil, err
		}
	} else {
		if err := unit.Bookings().Save(ctx, b); err != nil {
			return nil, err
		}
	}
	if b.Quote.PromoCode != "" {
		if err := unit.Promos().ReleaseRedemption(ctx, b.Quote.PromoCode, b.GuestID, string(b.ID)); err != nil {
			return nil, err
		}
	}

	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()

	result := dto.NewBooking(b)
	return &result, nil
}

package booking

import (
	"context"
	"time"

	"rentora/internal/app/dto"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/uow"
	domainbooking "rentora/internal/domain/booking"
)

type CheckInCommand struct {
	BookingID string `validate:"required"`
	Actor     string `validate:"required"`
}

func (CheckInCommand) Key() string { return "booking.check_in" }

type CheckInHandler struct {
	box   appoutbox.Outbox
	clock func() time.Time
}

func NewCheckInHandler(box appoutbox.Outbox, clock func() time.Time) *CheckInHandler {
	if clock == nil {
		clock = time.Now
	}
	return &CheckInHandler{box: box, clock: clock}
}

func (h *CheckInHandler) Handle(ctx context.Context, cmd CheckInCommand) (*dto.Booking, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	b, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if cmd.Actor != b.GuestID && cmd.Actor != string(b.HostID) {
		return nil, ErrNotBookingParty
	}
	if err := b.CheckIn(cmd.Actor, h.clock()); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, b); err != nil {
		return nil, err
	}
	if err := appoutbox.RecordDomainEvents(ctx, h.box, nil, b.PendingEvents()); err != nil {
		return nil, err
	}
	b.ClearEvents()
	result := dto.NewBooking(b)
	return &result, nil
}

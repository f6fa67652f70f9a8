package booking

import (
	"context"

	"rentora/internal/app/dto"
	"rentora/internal/app/support"
	"rentora/internal/app/uow"
	"rentora/internal/domain/property"
)

type GuestBookingsQuery struct {
	GuestID string `validate:"required"`
}

func (GuestBookingsQuery) Key() string { return "booking.list_guest" }

type GuestBookingsHandler struct {
	factory uow.UoWFactory
}

func NewGuestBookingsHandler(factory uow.UoWFactory) *GuestBookingsHandler {
	return &GuestBookingsHandler{factory: factory}
}

func (h *GuestBookingsHandler) Handle(ctx context.Context, q GuestBookingsQuery) ([]dto.Booking, error) {
	var out []dto.Booking
	err := support.WithReadOnlyUnit(ctx, h.factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		items, err := unit.Bookings().ListByGuest(ctx, q.GuestID)
		if err != nil {
			return err
		}
		out = dto.NewBookings(items)
		return nil
	})
	return out, err
}

type HostBookingsQuery struct {
	PropertyID string `validate:"required"`
	HostID     string `validate:"required"`
}

func (HostBookingsQuery) Key() string { return "booking.list_host" }

type HostBookingsHandler struct {
	factory uow.UoWFactory
}

func NewHostBookingsHandler(factory uow.UoWFactory) *HostBookingsHandler {
	return &HostBookingsHandler{factory: factory}
}

func (h *HostBookingsHandler) Handle(ctx context.Context, q HostBookingsQuery) ([]dto.Booking, error) {
	var out []dto.Booking
	err := support.WithReadOnlyUnit(ctx, h.factory, func(ctx context.Context, unit uow.UnitOfWork) error {
		prop, err := unit.Properties().ByID(ctx, property.PropertyID(q.PropertyID))
		if err != nil {
			return err
		}
		if string(prop.Host) != q.HostID {
			return ErrNotBookingParty
		}
		items, err := unit.Bookings().ListByProperty(ctx, prop.ID)
		if err != nil {
			return err
		}
		out = dto.NewBookings(items)
		return nil
	})
	return out, err
}

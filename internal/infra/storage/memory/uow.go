package memory

import (
	"context"
	"errors"

	"rentora/internal/app/uow"
	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
	domainpromo "rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertyRepo *PropertyRepository
	CalendarRepo *CalendarRepository
	BookingRepo  *BookingRepository
	Reservations *ReservationStore
	Promo        *PromoStore
}

// NewFactory builds a fully wired in-memory store set.
func NewFactory() Factory {
	properties := NewPropertyRepository()
	calendars := NewCalendarRepository()
	bookings := NewBookingRepository()
	return Factory{
		PropertyRepo: properties,
		CalendarRepo: calendars,
		BookingRepo:  bookings,
		Reservations: NewReservationStore(calendars, bookings),
		Promo:        NewPromoStore(),
	}
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertyRepo == nil || f.CalendarRepo == nil || f.BookingRepo == nil || f.Reservations == nil || f.Promo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	factory Factory
}

func (u *Unit) Properties() domainproperty.Repository { return u.factory.PropertyRepo }

func (u *Unit) Availability() domainavailability.Repository { return u.factory.CalendarRepo }

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingRepo }

func (u *Unit) Reservations() domainbooking.ReservationStore { return u.factory.Reservations }

func (u *Unit) Promos() domainpromo.Provider { return u.factory.Promo }

func (u *Unit) Commit(ctx context.Context) error { return nil }

func (u *Unit) Rollback(ctx context.Context) error { return nil }

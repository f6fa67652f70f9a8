package uow

import (
	"context"

	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
	domainpromo "rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Properties() domainproperty.Repository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository
	Reservations() domainbooking.ReservationStore
	Promos() domainpromo.Provider

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentora/internal/app/uow"
	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
	domainpromo "rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertyRepo domainproperty.Repository
	CalendarRepo domainavailability.Repository
	BookingRepo  domainbooking.Repository
	Reservations domainbooking.ReservationStore
	Promo        domainpromo.Provider
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{factory: f, session: session}, nil
}

type Unit struct {
	factory Factory
	session mongo.Session
}

func (u *Unit) Properties() domainproperty.Repository { return u.factory.PropertyRepo }

func (u *Unit) Availability() domainavailability.Repository { return u.factory.CalendarRepo }

func (u *Unit) Bookings() domainbooking.Repository { return u.factory.BookingRepo }

func (u *Unit) Reservations() domainbooking.ReservationStore { return u.factory.Reservations }

func (u *Unit) Promos() domainpromo.Provider { return u.factory.Promo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

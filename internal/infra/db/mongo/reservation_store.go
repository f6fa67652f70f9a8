package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
)

// ReservationStore commits reservations through a per-night claim table.
// Each night of a stay becomes one document in calendar_days under a
// unique (property_id, date) index, so two transactions racing for the
// same night cannot both commit: the loser hits a duplicate key and maps
// to ErrConflict.
type ReservationStore struct {
	days      *mongo.Collection
	calendars *CalendarRepository
	bookings  *BookingRepository
}

func NewReservationStore(db *mongo.Database, calendars *CalendarRepository, bookings *BookingRepository) *ReservationStore {
	days := db.Collection("calendar_days")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "property_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = days.Indexes().CreateOne(context.Background(), idx)
	return &ReservationStore{days: days, calendars: calendars, bookings: bookings}
}

func (s *ReservationStore) Reserve(ctx context.Context, b *domainbooking.Booking) error {
	docs := make([]any, 0, b.Range.Nights())
	for _, date := range b.Range.Dates() {
		docs = append(docs, bson.M{
			"property_id": string(b.PropertyID),
			"date":        date.UnixMilli(),
			"booking_id":  string(b.ID),
		})
	}
	if _, err := s.days.InsertMany(ctx, docs); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainbooking.ErrConflict
		}
		return err
	}

	calendar, err := s.calendars.Calendar(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if err := calendar.Reserve(b.Range, string(b.ID), b.UpdatedAt); err != nil {
		return domainbooking.ErrConflict
	}
	if err := s.calendars.Save(ctx, calendar); err != nil {
		return err
	}
	return s.bookings.Save(ctx, b)
}

func (s *ReservationStore) Release(ctx context.Context, b *domainbooking.Booking) error {
	if _, err := s.days.DeleteMany(ctx, bson.M{"property_id": string(b.PropertyID), "booking_id": string(b.ID)}); err != nil {
		return err
	}
	calendar, err := s.calendars.Calendar(ctx, b.PropertyID)
	if err != nil {
		return err
	}
	if err := calendar.Release(string(b.ID), b.UpdatedAt); err != nil && err != domainavailability.ErrRangeNotFound {
		return err
	}
	if err := s.calendars.Save(ctx, calendar); err != nil {
		return err
	}
	return s.bookings.Save(ctx, b)
}

var _ domainbooking.ReservationStore = (*ReservationStore)(nil)

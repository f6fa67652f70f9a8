package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainproperty "rentora/internal/domain/property"
	"rentora/internal/domain/shared/money"
)

type PropertyRepository struct {
	col *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{col: db.Collection("agg_property")}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperty.PropertyID) (*domainproperty.Property, error) {
	var doc propertyDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainproperty.ErrPropertyNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PropertyRepository) Save(ctx context.Context, p *domainproperty.Property) error {
	doc := newPropertyDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

type propertyDocument struct {
	ID            string         `bson:"_id"`
	Host          string         `bson:"host_id"`
	Title         string         `bson:"title"`
	GuestCapacity int            `bson:"guest_capacity"`
	Daily         *dailyTermsDoc `bson:"daily,omitempty"`
	Monthly       *monthTermsDoc `bson:"monthly,omitempty"`
	CreatedAt     int64          `bson:"created_at"`
	UpdatedAt     int64          `bson:"updated_at"`
	Version       int64          `bson:"version"`
}

type dailyTermsDoc struct {
	NightlyAmount int64  `bson:"nightly_amount"`
	Currency      string `bson:"currency"`
	MinNights     int    `bson:"min_nights"`
}

type monthTermsDoc struct {
	MonthlyAmount int64  `bson:"monthly_amount"`
	Currency      string `bson:"currency"`
	MinMonths     int    `bson:"min_months"`
}

func newPropertyDocument(p *domainproperty.Property) propertyDocument {
	doc := propertyDocument{
		ID:            string(p.ID),
		Host:          string(p.Host),
		Title:         p.Title,
		GuestCapacity: p.GuestCapacity,
		CreatedAt:     p.CreatedAt.UnixMilli(),
		UpdatedAt:     p.UpdatedAt.UnixMilli(),
		Version:       p.Version,
	}
	if p.Terms.Daily != nil {
		doc.Daily = &dailyTermsDoc{
			NightlyAmount: p.Terms.Daily.NightlyRate.Amount,
			Currency:      p.Terms.Daily.NightlyRate.Currency,
			MinNights:     p.Terms.Daily.MinNights,
		}
	}
	if p.Terms.Monthly != nil {
		doc.Monthly = &monthTermsDoc{
			MonthlyAmount: p.Terms.Monthly.MonthlyRate.Amount,
			Currency:      p.Terms.Monthly.MonthlyRate.Currency,
			MinMonths:     p.Terms.Monthly.MinMonths,
		}
	}
	return doc
}

func (d propertyDocument) toAggregate() *domainproperty.Property {
	p := &domainproperty.Property{
		ID:            domainproperty.PropertyID(d.ID),
		Host:          domainproperty.HostID(d.Host),
		Title:         d.Title,
		GuestCapacity: d.GuestCapacity,
		CreatedAt:     timestampToTime(d.CreatedAt),
		UpdatedAt:     timestampToTime(d.UpdatedAt),
		Version:       d.Version,
	}
	if d.Daily != nil {
		p.Terms.Daily = &domainproperty.DailyTerms{
			NightlyRate: money.Money{Amount: d.Daily.NightlyAmount, Currency: d.Daily.Currency},
			MinNights:   d.Daily.MinNights,
		}
	}
	if d.Monthly != nil {
		p.Terms.Monthly = &domainproperty.MonthlyTerms{
			MonthlyRate: money.Money{Amount: d.Monthly.MonthlyAmount, Currency: d.Monthly.Currency},
			MinMonths:   d.Monthly.MinMonths,
		}
	}
	return p
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "rentora/internal/domain/booking"
	domainpricing "rentora/internal/domain/pricing"
	domainproperty "rentora/internal/domain/property"
	domainrange "rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	col := db.Collection("agg_booking")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "guest_id", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "property_id", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "state", Value: 1}, {Key: "updated_at", Value: 1}}})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{Keys: bson.D{{Key: "payment_ref", Value: 1}}})
	return &BookingRepository{col: col}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) ByPaymentRef(ctx context.Context, ref string) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"payment_ref": ref}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domainbooking.ErrBookingNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
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
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"guest_id": guestID})
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperty.PropertyID) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"property_id": id})
}

func (r *BookingRepository) ListByState(ctx context.Context, state domainbooking.BookingState, updatedBefore time.Time) ([]*domainbooking.Booking, error) {
	return r.list(ctx, bson.M{"state": state, "updated_at": bson.M{"$lt": updatedBefore.UnixMilli()}})
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type bookingDocument struct {
	ID         string          `bson:"_id"`
	PropertyID string          `bson:"property_id"`
	GuestID    string          `bson:"guest_id"`
	HostID     string          `bson:"host_id"`
	Range      rangeDocument   `bson:"range"`
	Kind       string          `bson:"kind"`
	Months     int             `bson:"months"`
	Guests     int             `bson:"guests"`
	Quote      quoteDocument   `bson:"quote"`
	State      string          `bson:"state"`
	PaymentRef string          `bson:"payment_ref"`
	Audit      []auditDocument `bson:"audit"`
	CreatedAt  int64           `bson:"created_at"`
	UpdatedAt  int64           `bson:"updated_at"`
	Version    int64           `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type auditDocument struct {
	Actor  string `bson:"actor"`
	From   string `bson:"from"`
	To     string `bson:"to"`
	Reason string `bson:"reason"`
	At     int64  `bson:"at"`
}

type quoteDocument struct {
	Kind          string `bson:"kind"`
	Nights        int    `bson:"nights"`
	Months        int    `bson:"months"`
	Currency      string `bson:"currency"`
	Base          int64  `bson:"base"`
	Fee           int64  `bson:"fee"`
	Tax           int64  `bson:"tax"`
	Subtotal      int64  `bson:"subtotal"`
	Discount      int64  `bson:"discount"`
	Total         int64  `bson:"total"`
	ContractValue int64  `bson:"contract_value"`
	PromoCode     string `bson:"promo_code"`
	PromoPercent  int64  `bson:"promo_percent"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    b.GuestID,
		HostID:     string(b.HostID),
		Range:      rangeDocument{CheckIn: b.Range.CheckIn.UnixMilli(), CheckOut: b.Range.CheckOut.UnixMilli()},
		Kind:       string(b.Kind),
		Months:     b.Months,
		Guests:     b.Guests,
		Quote:      newQuoteDocument(b.Quote),
		State:      string(b.State),
		PaymentRef: b.PaymentRef,
		CreatedAt:  b.CreatedAt.UnixMilli(),
		UpdatedAt:  b.UpdatedAt.UnixMilli(),
		Version:    b.Version,
	}
	for _, entry := range b.Audit {
		doc.Audit = append(doc.Audit, auditDocument{
			Actor:  entry.Actor,
			From:   string(entry.From),
			To:     string(entry.To),
			Reason: entry.Reason,
			At:     entry.At.UnixMilli(),
		})
	}
	return doc
}

func newQuoteDocument(q domainpricing.Quote) quoteDocument {
	return quoteDocument{
		Kind:          string(q.Kind),
		Nights:        q.Nights,
		Months:        q.Months,
		Currency:      q.Total.Currency,
		Base:          q.Base.Amount,
		Fee:           q.Fee.Amount,
		Tax:           q.Tax.Amount,
		Subtotal:      q.Subtotal.Amount,
		Discount:      q.Discount.Amount,
		Total:         q.Total.Amount,
		ContractValue: q.ContractValue.Amount,
		PromoCode:     q.PromoCode,
		PromoPercent:  q.PromoPercent,
	}
}

func (d bookingDocument) toAggregate() *domainbooking.Booking {
	b := &domainbooking.Booking{
		ID:         domainbooking.BookingID(d.ID),
		PropertyID: domainproperty.PropertyID(d.PropertyID),
		GuestID:    d.GuestID,
		HostID:     domainproperty.HostID(d.HostID),
		Range:      domainrange.DateRange{CheckIn: timestampToTime(d.Range.CheckIn), CheckOut: timestampToTime(d.Range.CheckOut)},
		Kind:       domainproperty.RentalKind(d.Kind),
		Months:     d.Months,
		Guests:     d.Guests,
		Quote:      d.Quote.toQuote(),
		State:      domainbooking.BookingState(d.State),
		PaymentRef: d.PaymentRef,
		CreatedAt:  timestampToTime(d.CreatedAt),
		UpdatedAt:  timestampToTime(d.UpdatedAt),
		Version:    d.Version,
	}
	for _, entry := range d.Audit {
		b.Audit = append(b.Audit, domainbooking.AuditEntry{
			Actor:  entry.Actor,
			From:   domainbooking.BookingState(entry.From),
			To:     domainbooking.BookingState(entry.To),
			Reason: entry.Reason,
			At:     timestampToTime(entry.At),
		})
	}
	return b
}

func (d quoteDocument) toQuote() domainpricing.Quote {
	amount := func(v int64) money.Money {
		return money.Money{Amount: v, Currency: d.Currency}
	}
	return domainpricing.Quote{
		Kind:          domainproperty.RentalKind(d.Kind),
		Nights:        d.Nights,
		Months:        d.Months,
		Base:          amount(d.Base),
		Fee:           amount(d.Fee),
		Tax:           amount(d.Tax),
		Subtotal:      amount(d.Subtotal),
		Discount:      amount(d.Discount),
		Total:         amount(d.Total),
		ContractValue: amount(d.ContractValue),
		PromoCode:     d.PromoCode,
		PromoPercent:  d.PromoPercent,
	}
}

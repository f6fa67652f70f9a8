package mongo

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rentora/internal/domain/promo"
	"rentora/internal/domain/shared/daterange"
)

type PromoStore struct {
	codes       *mongo.Collection
	redemptions *mongo.Collection
}

func NewPromoStore(db *mongo.Database) *PromoStore {
	redemptions := db.Collection("promo_redemptions")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}, {Key: "guest_id", Value: 1}, {Key: "booking_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = redemptions.Indexes().CreateOne(context.Background(), idx)
	return &PromoStore{codes: db.Collection("promo_codes"), redemptions: redemptions}
}

func (s *PromoStore) Put(ctx context.Context, code promo.Code) error {
	if err := code.Validate(); err != nil {
		return err
	}
	key := strings.ToUpper(strings.TrimSpace(code.Code))
	doc := promoDocument{
		ID:             key,
		Percent:        code.Percent,
		GrantedAt:      code.GrantedAt,
		ExpiresAt:      code.ExpiresAt,
		RelativeMonths: code.RelativeMonths,
		MultiAccount:   code.MultiAccount,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.codes.ReplaceOne(ctx, bson.M{"_id": key}, doc, opts)
	return err
}

func (s *PromoStore) Resolve(ctx context.Context, code string, guestID string, stay daterange.DateRange) (promo.Code, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	var doc promoDocument
	if err := s.codes.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return promo.Code{}, promo.ErrCodeNotFound
		}
		return promo.Code{}, err
	}
	resolved := doc.toCode()
	if !resolved.MultiAccount {
		held, err := s.hasOverlapping(ctx, key, guestID, "", stay)
		if err != nil {
			return promo.Code{}, err
		}
		if held {
			return promo.Code{}, promo.ErrCodeConsumed
		}
	}
	return resolved, nil
}

func (s *PromoStore) Redeem(ctx context.Context, code string, guestID string, bookingID string, stay daterange.DateRange) error {
	key := strings.ToUpper(strings.TrimSpace(code))
	var existing promoDocument
	if err := s.codes.FindOne(ctx, bson.M{"_id": key}).Decode(&existing); err != nil {
		if err == mongo.ErrNoDocuments {
			return promo.ErrCodeNotFound
		}
		return err
	}
	if !existing.MultiAccount {
		held, err := s.hasOverlapping(ctx, key, guestID, bookingID, stay)
		if err != nil {
			return err
		}
		if held {
			return promo.ErrCodeConsumed
		}
	}
	filter := bson.M{"code": key, "guest_id": guestID, "booking_id": bookingID}
	doc := bson.M{
		"code":        key,
		"guest_id":    guestID,
		"booking_id":  bookingID,
		"check_in":    stay.CheckIn,
		"check_out":   stay.CheckOut,
		"redeemed_at": time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.redemptions.ReplaceOne(ctx, filter, doc, opts)
	return err
}

func (s *PromoStore) ReleaseRedemption(ctx context.Context, code string, guestID string, bookingID string) error {
	key := strings.ToUpper(strings.TrimSpace(code))
	_, err := s.redemptions.DeleteOne(ctx, bson.M{"code": key, "guest_id": guestID, "booking_id": bookingID})
	return err
}

// hasOverlapping reports whether the guest already holds the code on a
// different booking whose dates overlap the candidate stay.
func (s *PromoStore) hasOverlapping(ctx context.Context, key, guestID, bookingID string, stay daterange.DateRange) (bool, error) {
	filter := bson.M{
		"code":      key,
		"guest_id":  guestID,
		"check_in":  bson.M{"$lt": stay.CheckOut},
		"check_out": bson.M{"$gt": stay.CheckIn},
	}
	if bookingID != "" {
		filter["booking_id"] = bson.M{"$ne": bookingID}
	}
	count, err := s.redemptions.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type promoDocument struct {
	ID             string    `bson:"_id"`
	Percent        int64     `bson:"percent"`
	GrantedAt      time.Time `bson:"granted_at"`
	ExpiresAt      time.Time `bson:"expires_at,omitempty"`
	RelativeMonths int       `bson:"relative_months"`
	MultiAccount   bool      `bson:"multi_account"`
}

func (d promoDocument) toCode() promo.Code {
	return promo.Code{
		Code:           d.ID,
		Percent:        d.Percent,
		GrantedAt:      d.GrantedAt,
		ExpiresAt:      d.ExpiresAt,
		RelativeMonths: d.RelativeMonths,
		MultiAccount:   d.MultiAccount,
	}
}

var _ promo.Provider = (*PromoStore)(nil)

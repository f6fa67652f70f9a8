package memory

import (
	"context"
	"strings"
	"sync"

	"rentora/internal/domain/promo"
	"rentora/internal/domain/shared/daterange"
)

type redemption struct {
	guestID   string
	bookingID string
	stay      daterange.DateRange
}

// PromoStore keeps promotional codes and their redemptions in memory. A
// redemption is held only while its booking is active; releasing it frees
// the code for the guest again.
type PromoStore struct {
	mu       sync.Mutex
	codes    map[string]promo.Code
	redeemed map[string][]redemption
}

func NewPromoStore() *PromoStore {
	return &PromoStore{
		codes:    make(map[string]promo.Code),
		redeemed: make(map[string][]redemption),
	}
}

func (s *PromoStore) Put(ctx context.Context, code promo.Code) error {
	if err := code.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[normalize(code.Code)] = code
	return nil
}

func (s *PromoStore) Resolve(ctx context.Context, code string, guestID string, stay daterange.DateRange) (promo.Code, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[normalize(code)]
	if !ok {
		return promo.Code{}, promo.ErrCodeNotFound
	}
	if !c.MultiAccount && s.overlappingLocked(normalize(code), guestID, "", stay) {
		return promo.Code{}, promo.ErrCodeConsumed
	}
	return c, nil
}

func (s *PromoStore) Redeem(ctx context.Context, code string, guestID string, bookingID string, stay daterange.DateRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalize(code)
	c, ok := s.codes[key]
	if !ok {
		return promo.ErrCodeNotFound
	}
	if !c.MultiAccount && s.overlappingLocked(key, guestID, bookingID, stay) {
		return promo.ErrCodeConsumed
	}
	for i, r := range s.redeemed[key] {
		if r.guestID == guestID && r.bookingID == bookingID {
			s.redeemed[key][i].stay = stay
			return nil
		}
	}
	s.redeemed[key] = append(s.redeemed[key], redemption{guestID: guestID, bookingID: bookingID, stay: stay})
	return nil
}

// ReleaseRedemption unbinds a code from a booking. Unknown redemptions are
// a no-op so cancellation paths need not track whether a redeem happened.
func (s *PromoStore) ReleaseRedemption(ctx context.Context, code string, guestID string, bookingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalize(code)
	kept := s.redeemed[key][:0]
	for _, r := range s.redeemed[key] {
		if r.guestID == guestID && r.bookingID == bookingID {
			continue
		}
		kept = append(kept, r)
	}
	s.redeemed[key] = kept
	return nil
}

// overlappingLocked reports whether the guest holds this code on another
// booking whose dates overlap the candidate stay.
func (s *PromoStore) overlappingLocked(key, guestID, bookingID string, stay daterange.DateRange) bool {
	for _, r := range s.redeemed[key] {
		if r.guestID == guestID && r.bookingID != bookingID && r.stay.Overlaps(stay) {
			return true
		}
	}
	return false
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

var _ promo.Provider = (*PromoStore)(nil)

package promo

import (
	"context"
	"errors"
	"strings"
	"time"

	"rentora/internal/domain/shared/daterange"
)

var (
	ErrCodeNotFound = errors.New("promo: code not found")
	ErrCodeExpired  = errors.New("promo: code expired")
	ErrCodeConsumed = errors.New("promo: code already used on overlapping dates")
	ErrInvalidValue = errors.New("promo: percent value must be between 1 and 100")
)

// Code is a percentage discount granted to a guest. Expiry is either an
// absolute date or a number of months counted from the grant.
type Code struct {
	Code           string
	Percent        int64
	GrantedAt      time.Time
	ExpiresAt      time.Time // zero when RelativeMonths applies
	RelativeMonths int
	MultiAccount   bool
}

func (c Code) Validate() error {
	if strings.TrimSpace(c.Code) == "" {
		return ErrCodeNotFound
	}
	if c.Percent < 1 || c.Percent > 100 {
		return ErrInvalidValue
	}
	return nil
}

// ExpiryAt resolves the effective expiry instant.
func (c Code) ExpiryAt() time.Time {
	if !c.ExpiresAt.IsZero() {
		return c.ExpiresAt
	}
	if c.RelativeMonths > 0 {
		return c.GrantedAt.AddDate(0, c.RelativeMonths, 0)
	}
	return time.Time{}
}

func (c Code) Expired(now time.Time) bool {
	at := c.ExpiryAt()
	return !at.IsZero() && now.After(at)
}

// Provider resolves promotional codes for a guest. A code is refused only
// while it is bound to another booking of the same guest whose dates
// overlap the candidate stay; releasing the redemption (cancellation,
// payment failure) makes the code usable again, and non-overlapping stays
// may reuse it at any time.
type Provider interface {
	Resolve(ctx context.Context, code string, guestID string, stay daterange.DateRange) (Code, error)
	Redeem(ctx context.Context, code string, guestID string, bookingID string, stay daterange.DateRange) error
	ReleaseRedemption(ctx context.Context, code string, guestID string, bookingID string) error
}

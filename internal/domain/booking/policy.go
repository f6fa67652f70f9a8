package booking

import (
	"context"
	"time"

	"rentora/internal/domain/shared/daterange"
	"rentora/internal/domain/shared/money"
)

// FreeCancellationWindow is how far before check-in a booking may still be
// cancelled without penalty.
const FreeCancellationWindow = 24 * time.Hour

func CanCancelFree(dr daterange.DateRange, now time.Time) bool {
	return dr.CheckIn.Sub(now.UTC()) > FreeCancellationWindow
}

// PenaltyPolicy is the hook for late cancellations; pricing of the penalty
// fee lives outside the engine.
type PenaltyPolicy interface {
	Penalty(ctx context.Context, b *Booking, now time.Time) (money.Money, error)
}

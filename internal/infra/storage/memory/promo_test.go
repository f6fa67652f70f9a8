package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rentora/internal/domain/promo"
	"rentora/internal/domain/shared/daterange"
)

func stay(t *testing.T, fromDay, toDay int) daterange.DateRange {
	t.Helper()
	dr, err := daterange.New(testNow.AddDate(0, 0, fromDay), testNow.AddDate(0, 0, toDay))
	require.NoError(t, err)
	return dr
}

func TestPromoRedeemBlocksOverlappingReuse(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))

	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))

	_, err := s.Resolve(ctx, "SAVE10", "guest-1", stay(t, 12, 17))
	require.ErrorIs(t, err, promo.ErrCodeConsumed)
	require.ErrorIs(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-2", stay(t, 12, 17)), promo.ErrCodeConsumed)
}

func TestPromoReusableOnNonOverlappingStay(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))

	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))

	_, err := s.Resolve(ctx, "SAVE10", "guest-1", stay(t, 20, 25))
	require.NoError(t, err)
	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-2", stay(t, 20, 25)))
}

func TestPromoReusableAfterRelease(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))

	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))
	require.NoError(t, s.ReleaseRedemption(ctx, "SAVE10", "guest-1", "bk-1"))

	_, err := s.Resolve(ctx, "SAVE10", "guest-1", stay(t, 10, 15))
	require.NoError(t, err)
	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-2", stay(t, 10, 15)))
}

func TestPromoReleaseUnknownRedemptionIsNoop(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))
	require.NoError(t, s.ReleaseRedemption(ctx, "SAVE10", "guest-1", "bk-1"))
}

func TestPromoOtherGuestUnaffected(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))

	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))
	_, err := s.Resolve(ctx, "SAVE10", "guest-2", stay(t, 10, 15))
	require.NoError(t, err)
}

func TestPromoMultiAccountSkipsOverlapCheck(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "OPEN", Percent: 5, GrantedAt: testNow, MultiAccount: true}))

	require.NoError(t, s.Redeem(ctx, "OPEN", "guest-1", "bk-1", stay(t, 10, 15)))
	_, err := s.Resolve(ctx, "OPEN", "guest-1", stay(t, 10, 15))
	require.NoError(t, err)
	require.NoError(t, s.Redeem(ctx, "OPEN", "guest-1", "bk-2", stay(t, 12, 17)))
}

func TestPromoRedeemSameBookingTwice(t *testing.T) {
	s := NewPromoStore()
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, promo.Code{Code: "SAVE10", Percent: 10, GrantedAt: testNow}))

	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))
	require.NoError(t, s.Redeem(ctx, "SAVE10", "guest-1", "bk-1", stay(t, 10, 15)))
}

package promo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Code{Code: " ", Percent: 10}.Validate(), ErrCodeNotFound)
	require.ErrorIs(t, Code{Code: "X", Percent: 0}.Validate(), ErrInvalidValue)
	require.ErrorIs(t, Code{Code: "X", Percent: 101}.Validate(), ErrInvalidValue)
	require.NoError(t, Code{Code: "X", Percent: 100}.Validate())
}

func TestExpiryAbsoluteDate(t *testing.T) {
	expires := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	c := Code{Code: "FALL", Percent: 10, ExpiresAt: expires}

	require.False(t, c.Expired(expires.Add(-time.Hour)))
	require.True(t, c.Expired(expires.Add(time.Hour)))
}

func TestExpiryRelativeMonths(t *testing.T) {
	granted := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	c := Code{Code: "NEWYEAR", Percent: 15, GrantedAt: granted, RelativeMonths: 2}

	require.Equal(t, granted.AddDate(0, 2, 0), c.ExpiryAt())
	require.False(t, c.Expired(granted.AddDate(0, 1, 0)))
	require.True(t, c.Expired(granted.AddDate(0, 2, 1)))
}

func TestNoExpiryNeverExpires(t *testing.T) {
	c := Code{Code: "FOREVER", Percent: 5}
	require.True(t, c.ExpiryAt().IsZero())
	require.False(t, c.Expired(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

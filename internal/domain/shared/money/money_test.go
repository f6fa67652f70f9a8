package money

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewValidatesCurrency(t *testing.T) {
	_, err := New(100, "RU")
	require.ErrorIs(t, err, ErrInvalidCurrency)

	m, err := New(100, "rub")
	require.NoError(t, err)
	require.Equal(t, "RUB", m.Currency)
}

func TestAddRequiresSameCurrency(t *testing.T) {
	a := Must(100, "USD")
	b := Must(50, "EUR")
	_, err := a.Add(b)
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := a.Add(Must(50, "USD"))
	require.NoError(t, err)
	require.Equal(t, int64(150), sum.Amount)
}

func TestPercentRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount int64
		pct    int64
		want   int64
	}{
		{1000, 10, 100},
		{1000, 5, 50},
		{105, 10, 11},  // 10.5 rounds up
		{104, 10, 10},  // 10.4 rounds down
		{999, 5, 50},   // 49.95 rounds up
		{1, 10, 0},     // 0.1 rounds down
		{5, 10, 1},     // 0.5 rounds up
		{1000, 0, 0},
	}
	for _, tc := range cases {
		got := Must(tc.amount, "USD").Percent(tc.pct)
		require.Equal(t, tc.want, got.Amount, "%d%% of %d", tc.pct, tc.amount)
		require.Equal(t, "USD", got.Currency)
	}
}

func TestPercentOfNonPositiveIsZero(t *testing.T) {
	require.Equal(t, int64(0), Money{Amount: -100, Currency: "USD"}.Percent(10).Amount)
	require.Equal(t, int64(0), Money{Amount: 0, Currency: "USD"}.Percent(10).Amount)
}

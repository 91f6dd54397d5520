package money_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/shared/money"
)

func TestNewValidatesCurrency(t *testing.T) {
	t.Parallel()

	m, err := money.New(9500, "eur")
	require.NoError(t, err)
	require.Equal(t, "EUR", m.Currency)
	require.Equal(t, int64(9500), m.Amount)

	_, err = money.New(100, "")
	require.ErrorIs(t, err, money.ErrInvalidCurrency)

	_, err = money.New(100, "EURO")
	require.ErrorIs(t, err, money.ErrInvalidCurrency)
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	t.Parallel()

	sum, err := money.Must(9500, "EUR").Add(money.Must(3000, "EUR"))
	require.NoError(t, err)
	require.Equal(t, int64(12500), sum.Amount)

	_, err = money.Must(9500, "EUR").Add(money.Must(3000, "USD"))
	require.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestDisplayUnitsRoundsHalfAwayFromZero(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(96), money.Money{Amount: 9550, Currency: "EUR"}.DisplayUnits())
	require.Equal(t, int64(94), money.Money{Amount: 9449, Currency: "EUR"}.DisplayUnits())
	require.Equal(t, int64(95), money.Money{Amount: 9500, Currency: "EUR"}.DisplayUnits())
	require.Equal(t, int64(-96), money.Money{Amount: -9550, Currency: "EUR"}.DisplayUnits())
	require.Equal(t, int64(0), money.Money{}.DisplayUnits())
}

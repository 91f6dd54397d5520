package pricing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type stubRates struct {
	card *pricing.RateCard
	err  error
}

func (s stubRates) ByProperty(context.Context, properties.PropertyID) (*pricing.RateCard, error) {
	return s.card, s.err
}

func (s stubRates) Save(context.Context, *pricing.RateCard) error { return nil }

func stay(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.ParseISO(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func TestRateCardCalculatorQuote(t *testing.T) {
	t.Parallel()

	calc := pricing.RateCardCalculator{Rates: stubRates{card: &pricing.RateCard{
		PropertyID:  "river-loft",
		NightlyRate: money.Must(9500, "EUR"),
		CleaningFee: money.Must(3000, "EUR"),
	}}}

	q, err := calc.Quote(context.Background(), pricing.QuoteInput{
		PropertyID: "river-loft",
		Range:      stay(t, "2026-09-10", "2026-09-13"),
		Guests:     2,
	})
	require.NoError(t, err)

	require.Equal(t, 3, q.Nights)
	require.Equal(t, "EUR", q.Currency)
	require.Len(t, q.LineItems, 2)
	require.Equal(t, pricing.KindAccommodation, q.LineItems[0].Kind)
	require.Equal(t, "3 nights", q.LineItems[0].Label)
	require.Equal(t, int64(28500), q.LineItems[0].Amount.Amount)
	require.Equal(t, pricing.KindCleaning, q.LineItems[1].Kind)
	require.Equal(t, int64(3000), q.LineItems[1].Amount.Amount)
	require.Equal(t, int64(31500), q.Total.Amount)
}

func TestRateCardCalculatorOmitsZeroCleaningFee(t *testing.T) {
	t.Parallel()

	calc := pricing.RateCardCalculator{Rates: stubRates{card: &pricing.RateCard{
		PropertyID:  "garden-studio",
		NightlyRate: money.Must(6200, "EUR"),
		CleaningFee: money.Money{Currency: "EUR"},
	}}}

	q, err := calc.Quote(context.Background(), pricing.QuoteInput{
		PropertyID: "garden-studio",
		Range:      stay(t, "2026-09-10", "2026-09-12"),
		Guests:     1,
	})
	require.NoError(t, err)
	require.Len(t, q.LineItems, 1)
	require.Equal(t, int64(12400), q.Total.Amount)
}

func TestRateCardCalculatorMissingCard(t *testing.T) {
	t.Parallel()

	calc := pricing.RateCardCalculator{Rates: stubRates{}}
	_, err := calc.Quote(context.Background(), pricing.QuoteInput{
		PropertyID: "unknown",
		Range:      stay(t, "2026-09-10", "2026-09-12"),
		Guests:     2,
	})
	require.ErrorIs(t, err, pricing.ErrRateCardMissing)
}

func TestNewBreakdownDecomposesQuote(t *testing.T) {
	t.Parallel()

	calc := pricing.RateCardCalculator{Rates: stubRates{card: &pricing.RateCard{
		PropertyID:  "river-loft",
		NightlyRate: money.Must(9500, "EUR"),
		CleaningFee: money.Must(3000, "EUR"),
	}}}
	q, err := calc.Quote(context.Background(), pricing.QuoteInput{
		PropertyID: "river-loft",
		Range:      stay(t, "2026-09-10", "2026-09-13"),
		Guests:     2,
	})
	require.NoError(t, err)

	b, err := pricing.NewBreakdown(q)
	require.NoError(t, err)
	require.Equal(t, int64(95), b.BasePrice)
	require.Equal(t, 3, b.Nights)
	require.Equal(t, int64(285), b.Subtotal)
	require.Equal(t, int64(30), b.CleaningFee)
	require.Equal(t, int64(315), b.Total)
	require.Equal(t, "EUR", b.Currency)
	require.Empty(t, b.OtherItems)
}

func TestNewBreakdownCarriesExtraCharges(t *testing.T) {
	t.Parallel()

	q := pricing.Quote{
		PropertyID: "harbor-house",
		Nights:     2,
		Currency:   "EUR",
		LineItems: []pricing.LineItem{
			{Kind: pricing.KindAccommodation, Label: "2 nights", Amount: money.Must(28000, "EUR")},
			{Kind: pricing.KindTax, Label: "City tax", Amount: money.Must(400, "EUR")},
			{Kind: pricing.KindDiscount, Label: "Early bird", Amount: money.Money{Amount: -2000, Currency: "EUR"}},
		},
	}
	b, err := pricing.NewBreakdown(q)
	require.NoError(t, err)
	require.Equal(t, int64(140), b.BasePrice)
	require.Equal(t, int64(0), b.CleaningFee)
	require.Len(t, b.OtherItems, 2)
	require.Equal(t, pricing.KindTax, b.OtherItems[0].Kind)
	require.Equal(t, int64(4), b.OtherItems[0].Amount)
	require.Equal(t, int64(-20), b.OtherItems[1].Amount)
	// Every line the total includes shows up in the itemization.
	require.Equal(t, int64(264), b.Total)
}

func TestNewBreakdownRequiresAccommodationLine(t *testing.T) {
	t.Parallel()

	q := pricing.Quote{
		Nights:    2,
		Currency:  "EUR",
		LineItems: []pricing.LineItem{{Kind: pricing.KindCleaning, Label: "Cleaning Fee", Amount: money.Must(3000, "EUR")}},
	}
	_, err := pricing.NewBreakdown(q)
	require.ErrorIs(t, err, pricing.ErrNoAccommodation)
}

func TestNormalizeClassifiesUntaggedLines(t *testing.T) {
	t.Parallel()

	q := pricing.Quote{
		Nights:   2,
		Currency: "EUR",
		LineItems: []pricing.LineItem{
			{Label: "2 nights", Amount: money.Must(19000, "EUR")},
			{Label: "Cleaning Fee", Amount: money.Must(3000, "EUR")},
			{Label: "Service charge", Amount: money.Must(1000, "EUR")},
		},
	}
	require.NoError(t, q.Normalize())
	require.Equal(t, pricing.KindAccommodation, q.LineItems[0].Kind)
	require.Equal(t, pricing.KindCleaning, q.LineItems[1].Kind)
	require.Equal(t, pricing.KindFee, q.LineItems[2].Kind)
	require.Equal(t, int64(23000), q.Total.Amount)
}

func TestNormalizeRejectsNegativeCharges(t *testing.T) {
	t.Parallel()

	q := pricing.Quote{
		Nights:   2,
		Currency: "EUR",
		LineItems: []pricing.LineItem{
			{Kind: pricing.KindFee, Label: "Service charge", Amount: money.Money{Amount: -500, Currency: "EUR"}},
		},
	}
	require.ErrorIs(t, q.Normalize(), pricing.ErrNegativeComponent)

	discounted := pricing.Quote{
		Nights:   2,
		Currency: "EUR",
		LineItems: []pricing.LineItem{
			{Kind: pricing.KindAccommodation, Label: "2 nights", Amount: money.Must(19000, "EUR")},
			{Kind: pricing.KindDiscount, Label: "Promo", Amount: money.Money{Amount: -1000, Currency: "EUR"}},
		},
	}
	require.NoError(t, discounted.Normalize())
	require.Equal(t, int64(18000), discounted.Total.Amount)
}

func TestRateCardValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, pricing.RateCard{}.Validate(), pricing.ErrCurrencyUnset)
	require.ErrorIs(t, pricing.RateCard{
		NightlyRate: money.Money{Amount: -100, Currency: "EUR"},
	}.Validate(), pricing.ErrNegativeComponent)
	require.NoError(t, pricing.RateCard{NightlyRate: money.Must(9500, "EUR")}.Validate())
}

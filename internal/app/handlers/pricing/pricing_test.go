package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/middleware"
	"staybook/internal/app/queries"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	commands commands.Bus
	queries  queries.Bus
	factory  memory.Factory
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	factory := memory.NewFactory()

	rawCommands := commands.NewInMemoryBus()
	commands.RegisterHandler(rawCommands, pricingapp.UpdateRateCardCommand{}.Key(),
		&pricingapp.UpdateRateCardHandler{Factory: factory})

	rawQueries := queries.NewInMemoryBus()
	queries.RegisterHandler(rawQueries, pricingapp.GetQuoteQuery{}.Key(),
		&pricingapp.GetQuoteHandler{Factory: factory})
	queries.RegisterHandler(rawQueries, pricingapp.GetRateCardQuery{}.Key(),
		&pricingapp.GetRateCardHandler{Factory: factory})

	return &fixture{
		commands: middleware.ChainCommands(rawCommands, middleware.Transaction(factory)),
		queries:  middleware.ChainQueries(rawQueries, middleware.ReadOnlyUnit(factory)),
		factory:  factory,
		now:      now,
	}
}

func (f *fixture) seedRates(t *testing.T, minStay int) {
	t.Helper()
	require.NoError(t, f.factory.RatesRepo.Save(context.Background(), &domainpricing.RateCard{
		PropertyID:    "river-loft",
		NightlyRate:   money.Must(9500, "EUR"),
		CleaningFee:   money.Must(3000, "EUR"),
		MinStayNights: minStay,
	}))
}

func TestGetQuoteDecomposesStay(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedRates(t, 2)

	view, err := queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteView](context.Background(), f.queries,
		pricingapp.GetQuoteQuery{
			PropertyID: "river-loft",
			CheckIn:    "2026-09-10",
			CheckOut:   "2026-09-13",
			Guests:     2,
			Now:        f.now,
		})
	require.NoError(t, err)
	require.Equal(t, 3, view.Nights)
	require.Equal(t, int64(31500), view.TotalMinor)
	require.Len(t, view.LineItems, 2)
	require.NotNil(t, view.Breakdown)
	require.Equal(t, int64(95), view.Breakdown.BasePrice)
	require.Equal(t, int64(285), view.Breakdown.Subtotal)
	require.Equal(t, int64(30), view.Breakdown.CleaningFee)
	require.Equal(t, int64(315), view.Breakdown.Total)
	require.Equal(t, "EUR", view.Breakdown.Currency)
}

func TestGetQuoteEnforcesMinStayAndHorizon(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedRates(t, 2)
	ctx := context.Background()

	_, err := queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteView](ctx, f.queries,
		pricingapp.GetQuoteQuery{PropertyID: "river-loft", CheckIn: "2026-09-10", CheckOut: "2026-09-11", Guests: 2, Now: f.now})
	require.ErrorIs(t, err, domainbooking.ErrBelowMinStay)

	_, err = queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteView](ctx, f.queries,
		pricingapp.GetQuoteQuery{PropertyID: "river-loft", CheckIn: "2026-12-10", CheckOut: "2026-12-13", Guests: 2, Now: f.now})
	require.ErrorIs(t, err, domainbooking.ErrBeyondHorizon)
}

func TestGetQuoteWithoutRateCard(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteView](context.Background(), f.queries,
		pricingapp.GetQuoteQuery{PropertyID: "river-loft", CheckIn: "2026-09-10", CheckOut: "2026-09-13", Guests: 2, Now: f.now})
	require.ErrorIs(t, err, domainpricing.ErrRateCardMissing)
}

func TestUpdateRateCardUpsertsAndReads(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	created, err := commands.Dispatch[pricingapp.UpdateRateCardCommand, dto.RateCardView](ctx, f.commands,
		pricingapp.UpdateRateCardCommand{
			PropertyID:       "river-loft",
			NightlyRateMinor: 9500,
			CleaningFeeMinor: 3000,
			Currency:         "eur",
			MinStayNights:    2,
		})
	require.NoError(t, err)
	require.Equal(t, "EUR", created.Currency)
	require.Equal(t, int64(9500), created.NightlyRateMinor)

	updated, err := commands.Dispatch[pricingapp.UpdateRateCardCommand, dto.RateCardView](ctx, f.commands,
		pricingapp.UpdateRateCardCommand{
			PropertyID:       "river-loft",
			NightlyRateMinor: 10500,
			CleaningFeeMinor: 3000,
			Currency:         "EUR",
			MinStayNights:    3,
		})
	require.NoError(t, err)
	require.Equal(t, int64(10500), updated.NightlyRateMinor)
	require.Equal(t, 3, updated.MinStayNights)

	got, err := queries.Ask[pricingapp.GetRateCardQuery, dto.RateCardView](ctx, f.queries,
		pricingapp.GetRateCardQuery{PropertyID: "river-loft"})
	require.NoError(t, err)
	require.Equal(t, int64(10500), got.NightlyRateMinor)
}

func TestUpdateRateCardRejectsBadCurrency(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := commands.Dispatch[pricingapp.UpdateRateCardCommand, dto.RateCardView](context.Background(), f.commands,
		pricingapp.UpdateRateCardCommand{
			PropertyID:       "river-loft",
			NightlyRateMinor: 9500,
			Currency:         "EURO",
		})
	require.ErrorIs(t, err, money.ErrInvalidCurrency)
}

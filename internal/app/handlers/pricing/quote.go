package pricing

import (
	"context"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

const quoteKey = "pricing.quote"

// GetQuoteQuery prices a candidate stay. The result carries both the
// minor-unit quote and the display breakdown.
type GetQuoteQuery struct {
	PropertyID string
	CheckIn    string
	CheckOut   string
	Guests     int
	Now        time.Time
}

func (q GetQuoteQuery) Key() string { return quoteKey }

type GetQuoteHandler struct {
	Factory     uow.Factory
	Calculator  domainpricing.Calculator
	HorizonDays int
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.QuoteView, error) {
	dr, err := daterange.ParseISO(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.QuoteView{}, err
	}
	guests := q.Guests
	if guests < 1 {
		guests = 1
	}
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.QuoteView{}, err
	}
	if owned {
		defer unit.Rollback(ctx)
	}

	horizon := h.HorizonDays
	if horizon <= 0 {
		horizon = daterange.DefaultHorizonDays
	}
	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}
	minStay := 0
	if card, cardErr := unit.Rates().ByProperty(ctx, domainproperties.PropertyID(q.PropertyID)); cardErr == nil && card != nil {
		minStay = card.MinStayNights
	}
	if err := domainbooking.ValidateStay(dr, now, horizon, minStay); err != nil {
		return dto.QuoteView{}, err
	}

	calc := h.Calculator
	if calc == nil {
		calc = domainpricing.RateCardCalculator{Rates: unit.Rates()}
	}
	quote, err := calc.Quote(ctx, domainpricing.QuoteInput{
		PropertyID: domainproperties.PropertyID(q.PropertyID),
		Range:      dr,
		Guests:     guests,
	})
	if err != nil {
		return dto.QuoteView{}, err
	}
	breakdown, err := domainpricing.NewBreakdown(quote)
	if err != nil {
		return dto.QuoteView{}, err
	}
	return dto.MapQuote(quote, &breakdown), nil
}

var _ queries.Handler[GetQuoteQuery, dto.QuoteView] = (*GetQuoteHandler)(nil)

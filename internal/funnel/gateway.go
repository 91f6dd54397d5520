package funnel

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/uow"
	"staybook/internal/domain/availability"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

// Gateway backs a session's collaborators with the application's own storage.
// Sessions served by the same process read straight from the repositories;
// the funnel protocol stays the same as for a remote availability service.
type Gateway struct {
	Factory    uow.Factory
	Calculator pricing.Calculator
}

func NewGateway(factory uow.Factory) *Gateway {
	return &Gateway{Factory: factory}
}

func (g *Gateway) Window(ctx context.Context, id properties.PropertyID, from, to time.Time) (availability.Window, error) {
	cal, err := g.calendar(ctx, id)
	if err != nil {
		return nil, err
	}
	return cal.Window(from, to), nil
}

func (g *Gateway) CheckRange(ctx context.Context, id properties.PropertyID, dr daterange.DateRange) (bool, error) {
	cal, err := g.calendar(ctx, id)
	if err != nil {
		return false, err
	}
	return cal.CanReserve(dr), nil
}

func (g *Gateway) Quote(ctx context.Context, id properties.PropertyID, dr daterange.DateRange, guests int) (pricing.Quote, error) {
	ctx, unit, owned, err := uow.Require(ctx, g.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return pricing.Quote{}, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	calc := g.Calculator
	if calc == nil {
		calc = pricing.RateCardCalculator{Rates: unit.Rates()}
	}
	return calc.Quote(ctx, pricing.QuoteInput{PropertyID: id, Range: dr, Guests: guests})
}

// calendar returns the stored calendar, or a fresh open one when none exists
// yet. A property with no blocks is fully bookable.
func (g *Gateway) calendar(ctx context.Context, id properties.PropertyID) (*availability.Calendar, error) {
	ctx, unit, owned, err := uow.Require(ctx, g.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	cal, err := unit.Availability().Calendar(ctx, id)
	if errors.Is(err, availability.ErrCalendarMissing) {
		return availability.NewCalendar(id), nil
	}
	if err != nil {
		return nil, err
	}
	return cal, nil
}

// StarterFunc adapts a function to CheckoutStarter.
type StarterFunc func(ctx context.Context, h Handoff) error

func (f StarterFunc) BeginCheckout(ctx context.Context, h Handoff) error { return f(ctx, h) }

var (
	_ AvailabilityService = (*Gateway)(nil)
	_ QuoteService        = (*Gateway)(nil)
	_ CheckoutStarter     = StarterFunc(nil)
)

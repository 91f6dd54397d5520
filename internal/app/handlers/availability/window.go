package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/dto"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

const (
	windowKey = "availability.window"
	checkKey  = "availability.check"
	blocksKey = "availability.blocks"
)

// GetWindowQuery asks for the bookable-day map of a property. Zero From/To
// default to the full booking horizon starting today.
type GetWindowQuery struct {
	PropertyID string
	From       time.Time
	To         time.Time
	Now        time.Time
}

func (q GetWindowQuery) Key() string { return windowKey }

type GetWindowHandler struct {
	Factory     uow.Factory
	HorizonDays int
}

func (h *GetWindowHandler) Handle(ctx context.Context, q GetWindowQuery) (dto.AvailabilityWindow, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.AvailabilityWindow{}, err
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
	from := q.From
	if from.IsZero() {
		from = daterange.Day(now)
	}
	to := q.To
	if to.IsZero() {
		to = daterange.Day(now).AddDate(0, 0, horizon+1)
	}

	cal, err := unit.Availability().Calendar(ctx, domainproperties.PropertyID(q.PropertyID))
	if err != nil {
		// A property without calendar state is fully open.
		if errors.Is(err, domainavailability.ErrCalendarMissing) {
			cal = domainavailability.NewCalendar(domainproperties.PropertyID(q.PropertyID))
		} else {
			return dto.AvailabilityWindow{}, err
		}
	}
	window := cal.Window(from, to)
	return dto.MapWindow(cal.PropertyID, daterange.FormatISODate(from), daterange.FormatISODate(to), window), nil
}

var _ queries.Handler[GetWindowQuery, dto.AvailabilityWindow] = (*GetWindowHandler)(nil)

// CheckRangeQuery re-validates one candidate stay against live calendar
// state; the funnel calls it on every selection to defend against a stale
// window.
type CheckRangeQuery struct {
	PropertyID string
	CheckIn    string
	CheckOut   string
}

func (q CheckRangeQuery) Key() string { return checkKey }

type CheckRangeHandler struct {
	Factory uow.Factory
}

func (h *CheckRangeHandler) Handle(ctx context.Context, q CheckRangeQuery) (dto.RangeCheck, error) {
	dr, err := daterange.ParseISO(q.CheckIn, q.CheckOut)
	if err != nil {
		return dto.RangeCheck{}, err
	}
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.RangeCheck{}, err
	}
	if owned {
		defer unit.Rollback(ctx)
	}

	result := dto.RangeCheck{PropertyID: q.PropertyID, CheckIn: q.CheckIn, CheckOut: q.CheckOut}
	cal, err := unit.Availability().Calendar(ctx, domainproperties.PropertyID(q.PropertyID))
	if err != nil {
		if errors.Is(err, domainavailability.ErrCalendarMissing) {
			result.Available = true
			return result, nil
		}
		return dto.RangeCheck{}, err
	}
	result.Available = cal.CanReserve(dr)
	return result, nil
}

var _ queries.Handler[CheckRangeQuery, dto.RangeCheck] = (*CheckRangeHandler)(nil)

// ListBlocksQuery returns the raw calendar for the back-office calendar view.
type ListBlocksQuery struct {
	PropertyID string
}

func (q ListBlocksQuery) Key() string { return blocksKey }

type ListBlocksHandler struct {
	Factory uow.Factory
}

func (h *ListBlocksHandler) Handle(ctx context.Context, q ListBlocksQuery) ([]dto.CalendarBlockView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer unit.Rollback(ctx)
	}
	cal, err := unit.Availability().Calendar(ctx, domainproperties.PropertyID(q.PropertyID))
	if err != nil {
		if errors.Is(err, domainavailability.ErrCalendarMissing) {
			return []dto.CalendarBlockView{}, nil
		}
		return nil, err
	}
	return dto.MapBlocks(cal), nil
}

var _ queries.Handler[ListBlocksQuery, []dto.CalendarBlockView] = (*ListBlocksHandler)(nil)

package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainproperties "staybook/internal/domain/properties"
)

type ListBookingsQuery struct {
	PropertyID string
	Limit      int
	Offset     int
}

func (q ListBookingsQuery) Key() string { return "booking.list" }

type ListBookingsHandler struct {
	Factory uow.Factory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, query ListBookingsQuery) ([]dto.BookingView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	var items []*domainbooking.Booking
	if query.PropertyID != "" {
		items, err = unit.Bookings().ListByProperty(ctx, domainproperties.PropertyID(query.PropertyID))
	} else {
		limit := query.Limit
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		items, err = unit.Bookings().List(ctx, limit, query.Offset)
	}
	if err != nil {
		return nil, err
	}
	return dto.MapBookings(items), nil
}

type GetBookingQuery struct {
	BookingID string
}

func (q GetBookingQuery) Key() string { return "booking.get" }

type GetBookingHandler struct {
	Factory uow.Factory
}

func (h *GetBookingHandler) Handle(ctx context.Context, query GetBookingQuery) (dto.BookingView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return dto.BookingView{}, err
	}
	if owned {
		defer func() { _ = unit.Rollback(ctx) }()
	}
	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(query.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	return dto.MapBooking(record), nil
}

type ConfirmBookingCommand struct {
	BookingID string
}

func (c ConfirmBookingCommand) Key() string { return "booking.confirm" }

type ConfirmBookingHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

func (h *ConfirmBookingHandler) Handle(ctx context.Context, cmd ConfirmBookingCommand) (dto.BookingView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return dto.BookingView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if err := record.Confirm(clockOrNow(h.Now)); err != nil {
		return dto.BookingView{}, err
	}
	if err := unit.Bookings().Save(ctx, record); err != nil {
		return dto.BookingView{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &record.EventRecorder); err != nil {
		return dto.BookingView{}, err
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.BookingView{}, err
		}
		committed = true
	}
	return dto.MapBooking(record), nil
}

type CancelBookingCommand struct {
	BookingID string
	Reason    string
}

func (c CancelBookingCommand) Key() string { return "booking.cancel" }

type CancelBookingHandler struct {
	Factory uow.Factory
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Now     func() time.Time
}

// Handle cancels the booking and releases its calendar block so the nights
// become sellable again.
func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) (dto.BookingView, error) {
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return dto.BookingView{}, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}
	now := clockOrNow(h.Now)
	record, err := unit.Bookings().ByID(ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return dto.BookingView{}, err
	}
	if err := record.Cancel(cmd.Reason, now); err != nil {
		return dto.BookingView{}, err
	}

	cal, err := unit.Availability().Calendar(ctx, record.PropertyID)
	if err != nil && !errors.Is(err, domainavailability.ErrCalendarMissing) {
		return dto.BookingView{}, err
	}
	if cal != nil {
		if err := cal.Release(record.CalendarReference(), now); err != nil && !errors.Is(err, domainavailability.ErrBlockNotFound) {
			return dto.BookingView{}, err
		}
		if err := unit.Availability().Save(ctx, cal); err != nil {
			return dto.BookingView{}, err
		}
	}

	if err := unit.Bookings().Save(ctx, record); err != nil {
		return dto.BookingView{}, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &record.EventRecorder); err != nil {
		return dto.BookingView{}, err
	}
	if cal != nil {
		if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &cal.EventRecorder); err != nil {
			return dto.BookingView{}, err
		}
	}
	if owned {
		if err := unit.Commit(ctx); err != nil {
			return dto.BookingView{}, err
		}
		committed = true
	}
	return dto.MapBooking(record), nil
}

func clockOrNow(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

var (
	_ queries.Handler[ListBookingsQuery, []dto.BookingView]    = (*ListBookingsHandler)(nil)
	_ queries.Handler[GetBookingQuery, dto.BookingView]        = (*GetBookingHandler)(nil)
	_ commands.Handler[ConfirmBookingCommand, dto.BookingView] = (*ConfirmBookingHandler)(nil)
	_ commands.Handler[CancelBookingCommand, dto.BookingView]  = (*CancelBookingHandler)(nil)
)

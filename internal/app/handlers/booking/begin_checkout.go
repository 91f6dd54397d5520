package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

const beginCheckoutKey = "booking.begin_checkout"

var ErrPropertyNotBookable = errors.New("booking: property is not published")

// BeginCheckoutCommand is the funnel's handoff: the selected stay plus guest
// contact details. The quote is re-computed server-side; the funnel's quote
// is advisory only.
type BeginCheckoutCommand struct {
	CommandID  string
	PropertyID string
	CheckIn    string
	CheckOut   string
	Guests     int
	GuestName  string
	GuestEmail string
	GuestPhone string
	Note       string

	IdempotencyKeyV string
}

func (c BeginCheckoutCommand) Key() string { return beginCheckoutKey }

func (c BeginCheckoutCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c BeginCheckoutCommand) ResultPrototype() any { return &BeginCheckoutResult{} }

type BeginCheckoutResult struct {
	BookingID  string `json:"booking_id"`
	TotalMinor int64  `json:"total_minor_units"`
	Currency   string `json:"currency"`
}

type BeginCheckoutHandler struct {
	Factory     uow.Factory
	Calculator  domainpricing.Calculator
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	HorizonDays int
	Now         func() time.Time
}

func (h *BeginCheckoutHandler) Handle(ctx context.Context, cmd BeginCheckoutCommand) (*BeginCheckoutResult, error) {
	dr, err := daterange.ParseISO(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	ctx, unit, owned, err := uow.Require(ctx, h.Factory, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	if owned {
		defer func() {
			if !committed {
				_ = unit.Rollback(ctx)
			}
		}()
	}

	now := h.now()
	propertyID := domainproperties.PropertyID(cmd.PropertyID)

	property, err := unit.Properties().ByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.State != domainproperties.StatePublished {
		return nil, ErrPropertyNotBookable
	}
	if cmd.Guests > property.MaxGuests {
		return nil, domainbooking.ErrInvalidGuests
	}

	card, err := unit.Rates().ByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	horizon := h.HorizonDays
	if horizon <= 0 {
		horizon = daterange.DefaultHorizonDays
	}
	if err := domainbooking.ValidateStay(dr, now, horizon, card.MinStayNights); err != nil {
		return nil, err
	}

	guest, err := h.upsertGuest(ctx, unit, cmd, now)
	if err != nil {
		return nil, err
	}

	calc := h.Calculator
	if calc == nil {
		calc = domainpricing.RateCardCalculator{Rates: unit.Rates()}
	}
	quote, err := calc.Quote(ctx, domainpricing.QuoteInput{PropertyID: propertyID, Range: dr, Guests: cmd.Guests})
	if err != nil {
		return nil, err
	}

	bookingID := domainbooking.BookingID(cmd.CommandID)
	if bookingID == "" {
		bookingID = domainbooking.BookingID(uuid.NewString())
	}
	record, err := domainbooking.New(domainbooking.CreateParams{
		ID:         bookingID,
		PropertyID: propertyID,
		GuestID:    guest.ID,
		Range:      dr,
		Guests:     cmd.Guests,
		Quote:      quote,
		Note:       cmd.Note,
		CreatedAt:  now,
	})
	if err != nil {
		return nil, err
	}

	cal, err := unit.Availability().Calendar(ctx, propertyID)
	if errors.Is(err, domainavailability.ErrCalendarMissing) {
		cal = domainavailability.NewCalendar(propertyID)
	} else if err != nil {
		return nil, err
	}
	if err := cal.Reserve(dr, record.CalendarReference(), now); err != nil {
		// Surface the overbooking-prevented event even though the booking
		// itself is rejected.
		_ = outbox.Drain(ctx, h.Outbox, h.Encoder, &cal.EventRecorder)
		return nil, err
	}

	if err := unit.Availability().Save(ctx, cal); err != nil {
		return nil, err
	}
	guest.RecordBooking(now)
	if err := unit.Guests().Save(ctx, guest); err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(ctx, record); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &record.EventRecorder); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, &cal.EventRecorder); err != nil {
		return nil, err
	}

	if owned {
		if err := unit.Commit(ctx); err != nil {
			return nil, err
		}
		committed = true
	}
	return &BeginCheckoutResult{
		BookingID:  string(record.ID),
		TotalMinor: record.Total().Amount,
		Currency:   record.Total().Currency,
	}, nil
}

func (h *BeginCheckoutHandler) upsertGuest(ctx context.Context, unit uow.UnitOfWork, cmd BeginCheckoutCommand, now time.Time) (*domainguests.Guest, error) {
	existing, err := unit.Guests().ByEmail(ctx, cmd.GuestEmail)
	if err == nil && existing != nil {
		return existing, nil
	}
	if err != nil && !errors.Is(err, domainguests.ErrNotFound) {
		return nil, err
	}
	guest, err := domainguests.New(domainguests.GuestID(uuid.NewString()), cmd.GuestName, cmd.GuestEmail, cmd.GuestPhone, now)
	if err != nil {
		return nil, err
	}
	if err := unit.Guests().Save(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

func (h *BeginCheckoutHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[BeginCheckoutCommand, *BeginCheckoutResult] = (*BeginCheckoutHandler)(nil)
var _ middleware.IdempotentCommand = BeginCheckoutCommand{}

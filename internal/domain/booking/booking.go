package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/guests"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidGuests = errors.New("booking: guests count must be positive")
	ErrInvalidState  = errors.New("booking: invalid state transition")
	ErrNotFound      = errors.New("booking: not found")
	ErrCheckInInPast = errors.New("booking: check-in date is in the past")
	ErrBeyondHorizon = errors.New("booking: stay ends beyond the booking horizon")
	ErrBelowMinStay  = errors.New("booking: stay is shorter than the minimum")
	ErrGuestRequired = errors.New("booking: guest is required")
	ErrZeroTotal     = errors.New("booking: quoted total must be positive")
)

type BookingID string

type BookingState string

const (
	StatePending    BookingState = "PENDING"
	StateConfirmed  BookingState = "CONFIRMED"
	StateCancelled  BookingState = "CANCELLED"
	StateCheckedIn  BookingState = "CHECKED_IN"
	StateCheckedOut BookingState = "CHECKED_OUT"
)

// Booking records a checkout handoff from the funnel: the selected stay with
// the quote frozen at booking time.
type Booking struct {
	ID         BookingID
	PropertyID properties.PropertyID
	GuestID    guests.GuestID
	Range      daterange.DateRange
	Guests     int
	Quote      pricing.Quote
	State      BookingState
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	List(ctx context.Context, limit, offset int) ([]*Booking, error)
	ListByProperty(ctx context.Context, id properties.PropertyID) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
}

// ValidateStay enforces the funnel's selection rules server-side: check-in
// not in the past, check-out inside the horizon, stay at least minStay nights.
func ValidateStay(dr daterange.DateRange, now time.Time, horizonDays, minStay int) error {
	today := daterange.Day(now)
	if daterange.Day(dr.CheckIn).Before(today) {
		return ErrCheckInInPast
	}
	if !daterange.WithinHorizon(dr.CheckOut, today, horizonDays) {
		return ErrBeyondHorizon
	}
	if minStay > 0 && dr.Nights() < minStay {
		return ErrBelowMinStay
	}
	return nil
}

type CreateParams struct {
	ID         BookingID
	PropertyID properties.PropertyID
	GuestID    guests.GuestID
	Range      daterange.DateRange
	Guests     int
	Quote      pricing.Quote
	Note       string
	CreatedAt  time.Time
}

func New(params CreateParams) (*Booking, error) {
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Quote.Normalize(); err != nil {
		return nil, err
	}
	if params.Quote.Total.Amount <= 0 {
		return nil, ErrZeroTotal
	}
	now := params.CreatedAt.UTC()
	b := &Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		GuestID:    params.GuestID,
		Range:      params.Range,
		Guests:     params.Guests,
		Quote:      params.Quote,
		State:      StatePending,
		Note:       params.Note,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	b.Record(BookingRequested{
		BookingID:  b.ID,
		PropertyID: b.PropertyID,
		GuestID:    b.GuestID,
		Range:      b.Range,
		Guests:     b.Guests,
		Total:      b.Quote.Total,
		At:         now,
	})
	return b, nil
}

func (b *Booking) Confirm(now time.Time) error {
	if b.State != StatePending {
		return ErrInvalidState
	}
	b.State = StateConfirmed
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, PropertyID: b.PropertyID, Range: b.Range, Total: b.Quote.Total, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	switch b.State {
	case StatePending, StateConfirmed:
	default:
		return ErrInvalidState
	}
	b.State = StateCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, PropertyID: b.PropertyID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckIn(now time.Time) error {
	if b.State != StateConfirmed {
		return ErrInvalidState
	}
	b.State = StateCheckedIn
	b.UpdatedAt = now.UTC()
	b.Record(StayStarted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) CheckOut(now time.Time) error {
	if b.State != StateCheckedIn {
		return ErrInvalidState
	}
	b.State = StateCheckedOut
	b.UpdatedAt = now.UTC()
	b.Record(StayEnded{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// CalendarReference names the availability block a booking owns so cancel
// can release exactly the right range.
func (b *Booking) CalendarReference() string {
	return "booking-" + string(b.ID)
}

// Total is a convenience for admin listings.
func (b *Booking) Total() money.Money {
	return b.Quote.Total
}

package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

func stay(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.ParseISO(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func quote(t *testing.T, dr daterange.DateRange) pricing.Quote {
	t.Helper()
	q := pricing.Quote{
		PropertyID: "river-loft",
		Range:      dr,
		Guests:     2,
		Nights:     dr.Nights(),
		Currency:   "EUR",
		LineItems: []pricing.LineItem{
			{Kind: pricing.KindAccommodation, Label: "nights", Amount: money.Must(int64(dr.Nights())*9500, "EUR")},
		},
	}
	require.NoError(t, q.Normalize())
	return q
}

func newBooking(t *testing.T, now time.Time) *booking.Booking {
	t.Helper()
	dr := stay(t, "2026-09-10", "2026-09-13")
	b, err := booking.New(booking.CreateParams{
		ID:         "b-1",
		PropertyID: "river-loft",
		GuestID:    "g-1",
		Range:      dr,
		Guests:     2,
		Quote:      quote(t, dr),
		CreatedAt:  now,
	})
	require.NoError(t, err)
	return b
}

func TestNewBookingStartsPending(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	b := newBooking(t, now)

	require.Equal(t, booking.StatePending, b.State)
	require.Equal(t, int64(28500), b.Total().Amount)
	require.Equal(t, "booking-b-1", b.CalendarReference())

	events := b.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, "booking.requested", events[0].EventName())
	require.Equal(t, "b-1", events[0].AggregateID())
}

func TestNewBookingValidation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	dr := stay(t, "2026-09-10", "2026-09-13")

	_, err := booking.New(booking.CreateParams{ID: "b-1", GuestID: "g-1", Range: dr, Guests: 0, Quote: quote(t, dr), CreatedAt: now})
	require.ErrorIs(t, err, booking.ErrInvalidGuests)

	_, err = booking.New(booking.CreateParams{ID: "b-1", Range: dr, Guests: 2, Quote: quote(t, dr), CreatedAt: now})
	require.ErrorIs(t, err, booking.ErrGuestRequired)

	empty := pricing.Quote{Nights: dr.Nights(), Currency: "EUR"}
	_, err = booking.New(booking.CreateParams{ID: "b-1", GuestID: "g-1", Range: dr, Guests: 2, Quote: empty, CreatedAt: now})
	require.ErrorIs(t, err, booking.ErrZeroTotal)
}

func TestBookingLifecycle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	b := newBooking(t, now)

	require.ErrorIs(t, b.CheckIn(now), booking.ErrInvalidState)
	require.NoError(t, b.Confirm(now))
	require.Equal(t, booking.StateConfirmed, b.State)
	require.ErrorIs(t, b.Confirm(now), booking.ErrInvalidState)

	require.NoError(t, b.CheckIn(now))
	require.Equal(t, booking.StateCheckedIn, b.State)
	require.ErrorIs(t, b.Cancel("too late", now), booking.ErrInvalidState)

	require.NoError(t, b.CheckOut(now))
	require.Equal(t, booking.StateCheckedOut, b.State)
	require.ErrorIs(t, b.CheckOut(now), booking.ErrInvalidState)
}

func TestCancelFromPendingAndConfirmed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	b := newBooking(t, now)
	require.NoError(t, b.Cancel("guest changed plans", now))
	require.Equal(t, booking.StateCancelled, b.State)
	require.ErrorIs(t, b.Cancel("again", now), booking.ErrInvalidState)

	b = newBooking(t, now)
	require.NoError(t, b.Confirm(now))
	require.NoError(t, b.Cancel("host unavailable", now))
	require.Equal(t, booking.StateCancelled, b.State)
}

func TestValidateStay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, booking.ValidateStay(stay(t, "2026-09-10", "2026-09-13"), now, 90, 2))
	require.ErrorIs(t, booking.ValidateStay(stay(t, "2026-08-30", "2026-09-02"), now, 90, 2),
		booking.ErrCheckInInPast)
	require.ErrorIs(t, booking.ValidateStay(stay(t, "2026-11-28", "2026-12-05"), now, 90, 2),
		booking.ErrBeyondHorizon)
	require.ErrorIs(t, booking.ValidateStay(stay(t, "2026-09-10", "2026-09-11"), now, 90, 2),
		booking.ErrBelowMinStay)

	// Check-out exactly on the horizon edge is allowed.
	require.NoError(t, booking.ValidateStay(stay(t, "2026-11-27", "2026-11-30"), now, 90, 2))
}

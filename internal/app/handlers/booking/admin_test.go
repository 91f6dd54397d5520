package booking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	domainbooking "staybook/internal/domain/booking"
)

func TestConfirmBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)

	view, err := commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.BookingView](
		ctx, f.bus, bookingapp.ConfirmBookingCommand{BookingID: "b-1"})
	require.NoError(t, err)
	require.Equal(t, string(domainbooking.StateConfirmed), view.State)

	// Confirming twice is an invalid transition.
	_, err = commands.Dispatch[bookingapp.ConfirmBookingCommand, dto.BookingView](
		ctx, f.bus, bookingapp.ConfirmBookingCommand{BookingID: "b-1"})
	require.ErrorIs(t, err, domainbooking.ErrInvalidState)

	require.Contains(t, outboxEventNames(f.outbox), "booking.confirmed")
}

func TestCancelBookingReleasesNights(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)

	view, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.BookingView](
		ctx, f.bus, bookingapp.CancelBookingCommand{BookingID: "b-1", Reason: "guest changed plans"})
	require.NoError(t, err)
	require.Equal(t, string(domainbooking.StateCancelled), view.State)

	cal, err := f.factory.AvailabilityRepo.Calendar(ctx, "river-loft")
	require.NoError(t, err)
	require.Empty(t, cal.Blocks)

	// The freed nights can be booked again.
	_, err = commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-2", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)

	names := outboxEventNames(f.outbox)
	require.Contains(t, names, "booking.cancelled")
	require.Contains(t, names, "calendar.released")
}

func TestCancelUnknownBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := commands.Dispatch[bookingapp.CancelBookingCommand, dto.BookingView](
		context.Background(), f.bus, bookingapp.CancelBookingCommand{BookingID: "missing"})
	require.ErrorIs(t, err, domainbooking.ErrNotFound)
}

package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

type fixture struct {
	bus     commands.Bus
	factory memory.Factory
	outbox  *memory.Outbox
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	factory := memory.NewFactory()
	box := memory.NewOutbox()

	ctx := context.Background()
	property, err := domainproperties.New(domainproperties.CreateParams{
		ID:        "river-loft",
		Slug:      "river-loft",
		Name:      "River Loft",
		MaxGuests: 4,
		Now:       now,
	})
	require.NoError(t, err)
	require.NoError(t, property.Publish(now))
	property.ClearEvents()
	require.NoError(t, factory.PropertiesRepo.Save(ctx, property))
	require.NoError(t, factory.RatesRepo.Save(ctx, &domainpricing.RateCard{
		PropertyID:    "river-loft",
		NightlyRate:   money.Must(9500, "EUR"),
		CleaningFee:   money.Must(3000, "EUR"),
		MinStayNights: 2,
	}))

	raw := commands.NewInMemoryBus()
	commands.RegisterHandler(raw, bookingapp.BeginCheckoutCommand{}.Key(), &bookingapp.BeginCheckoutHandler{
		Factory: factory,
		Outbox:  box,
		Encoder: outbox.JSONEventEncoder{},
		Now:     func() time.Time { return now },
	})
	commands.RegisterHandler(raw, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		Factory: factory,
		Outbox:  box,
		Encoder: outbox.JSONEventEncoder{},
		Now:     func() time.Time { return now },
	})
	commands.RegisterHandler(raw, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Factory: factory,
		Outbox:  box,
		Encoder: outbox.JSONEventEncoder{},
		Now:     func() time.Time { return now },
	})
	bus := middleware.ChainCommands(raw,
		middleware.Idempotency(memory.NewIdempotencyStore(time.Hour)),
		middleware.Transaction(factory),
		middleware.OutboxFlush(box),
	)
	return &fixture{bus: bus, factory: factory, outbox: box, now: now}
}

func (f *fixture) checkout(commandID, checkIn, checkOut string, guests int) bookingapp.BeginCheckoutCommand {
	return bookingapp.BeginCheckoutCommand{
		CommandID:  commandID,
		PropertyID: "river-loft",
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		GuestName:  "Ada Guest",
		GuestEmail: "ada@example.com",
	}
}

func TestBeginCheckoutCreatesBookingAndBlocksCalendar(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	res, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)
	require.Equal(t, "b-1", res.BookingID)
	require.Equal(t, int64(31500), res.TotalMinor)
	require.Equal(t, "EUR", res.Currency)

	stored, err := f.factory.BookingsRepo.ByID(ctx, "b-1")
	require.NoError(t, err)
	require.Equal(t, domainbooking.StatePending, stored.State)
	require.Equal(t, 2, stored.Guests)

	cal, err := f.factory.AvailabilityRepo.Calendar(ctx, "river-loft")
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 1)
	require.Equal(t, domainavailability.ReasonBooking, cal.Blocks[0].Reason)
	require.Equal(t, "booking-b-1", cal.Blocks[0].Reference)

	guest, err := f.factory.GuestsRepo.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, guest.ID, stored.GuestID)

	names := outboxEventNames(f.outbox)
	require.Contains(t, names, "booking.requested")
	require.Contains(t, names, "calendar.blocked")
}

func TestBeginCheckoutRejectsDoubleBooking(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)

	_, err = commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-2", "2026-09-12", "2026-09-14", 2))
	require.ErrorIs(t, err, domainavailability.ErrOverlappingRange)

	_, err = f.factory.BookingsRepo.ByID(ctx, "b-2")
	require.ErrorIs(t, err, domainbooking.ErrNotFound)

	require.Contains(t, outboxEventNames(f.outbox), "calendar.overbooking_prevented")
}

func TestBeginCheckoutValidatesStayAndGuests(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-11", 2))
	require.ErrorIs(t, err, domainbooking.ErrBelowMinStay)

	_, err = commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-2", "2026-08-20", "2026-08-23", 2))
	require.ErrorIs(t, err, domainbooking.ErrCheckInInPast)

	_, err = commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-3", "2026-09-10", "2026-09-13", 6))
	require.ErrorIs(t, err, domainbooking.ErrInvalidGuests)
}

func TestBeginCheckoutRequiresPublishedProperty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	property, err := f.factory.PropertiesRepo.ByID(ctx, "river-loft")
	require.NoError(t, err)
	require.NoError(t, property.Archive(f.now))
	require.NoError(t, f.factory.PropertiesRepo.Save(ctx, property))

	_, err = commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.ErrorIs(t, err, bookingapp.ErrPropertyNotBookable)
}

func TestBeginCheckoutReplaysIdempotencyKey(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	cmd := f.checkout("b-1", "2026-09-10", "2026-09-13", 2)
	cmd.IdempotencyKeyV = "retry-1"
	first, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](ctx, f.bus, cmd)
	require.NoError(t, err)

	// A retried request with the same key replays the stored outcome instead
	// of reserving the nights twice.
	replay := f.checkout("b-99", "2026-09-10", "2026-09-13", 2)
	replay.IdempotencyKeyV = "retry-1"
	second, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](ctx, f.bus, replay)
	require.NoError(t, err)
	require.Equal(t, first.BookingID, second.BookingID)

	cal, err := f.factory.AvailabilityRepo.Calendar(ctx, "river-loft")
	require.NoError(t, err)
	require.Len(t, cal.Blocks, 1)
}

func TestBeginCheckoutReusesGuestByEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-1", "2026-09-10", "2026-09-13", 2))
	require.NoError(t, err)

	second, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](
		ctx, f.bus, f.checkout("b-2", "2026-09-20", "2026-09-23", 2))
	require.NoError(t, err)

	a, err := f.factory.BookingsRepo.ByID(ctx, domainbooking.BookingID(first.BookingID))
	require.NoError(t, err)
	b, err := f.factory.BookingsRepo.ByID(ctx, domainbooking.BookingID(second.BookingID))
	require.NoError(t, err)
	require.Equal(t, a.GuestID, b.GuestID)

	guest, err := f.factory.GuestsRepo.ByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, 2, guest.Bookings)
}

func outboxEventNames(box *memory.Outbox) []string {
	var names []string
	for _, doc := range box.Pending() {
		names = append(names, doc.Name)
	}
	return names
}

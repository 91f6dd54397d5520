package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/shared/daterange"
)

func stay(t *testing.T, checkIn, checkOut string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.ParseISO(checkIn, checkOut)
	require.NoError(t, err)
	return dr
}

func TestReserveBlocksTheStay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")

	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-13"), "booking-1", now))
	require.Len(t, cal.Blocks, 1)
	require.Equal(t, availability.ReasonBooking, cal.Blocks[0].Reason)
	require.Equal(t, "booking-1", cal.Blocks[0].Reference)

	events := cal.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, "calendar.blocked", events[0].EventName())
}

func TestReserveRecordsOverbookingPrevented(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-13"), "booking-1", now))
	cal.ClearEvents()

	err := cal.Reserve(stay(t, "2026-09-12", "2026-09-14"), "booking-2", now)
	require.ErrorIs(t, err, availability.ErrOverlappingRange)
	require.Len(t, cal.Blocks, 1)

	events := cal.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, "calendar.overbooking_prevented", events[0].EventName())
}

func TestBackToBackStaysDoNotConflict(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-13"), "booking-1", now))
	require.NoError(t, cal.Reserve(stay(t, "2026-09-13", "2026-09-15"), "booking-2", now))
	require.Len(t, cal.Blocks, 2)
}

func TestWindowMarksBlockedNightsClosed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-12"), "booking-1", now))

	from, _ := daterange.ParseISODate("2026-09-09")
	to, _ := daterange.ParseISODate("2026-09-14")
	w := cal.Window(from, to)

	require.True(t, w["2026-09-09"])
	require.False(t, w["2026-09-10"])
	require.False(t, w["2026-09-11"])
	// Check-out day turns over, the night stays sellable.
	require.True(t, w["2026-09-12"])
	require.True(t, w["2026-09-13"])
	// Dates outside the materialized window read as closed.
	require.False(t, w.Bookable(daterange.Day(to)))
}

func TestReleaseRemovesBlockByReference(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	r := stay(t, "2026-09-10", "2026-09-13")
	require.NoError(t, cal.Reserve(r, "booking-1", now))

	require.NoError(t, cal.Release("booking-1", now))
	require.Empty(t, cal.Blocks)
	require.True(t, cal.CanReserve(r))

	require.ErrorIs(t, cal.Release("booking-1", now), availability.ErrBlockNotFound)
}

func TestBlockRangeDefaultsToHostReason(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.BlockRange(stay(t, "2026-09-20", "2026-09-22"), "", "maintenance", now))
	require.Equal(t, availability.ReasonHost, cal.Blocks[0].Reason)

	err := cal.BlockRange(stay(t, "2026-09-21", "2026-09-23"), availability.ReasonCleaning, "buffer", now)
	require.ErrorIs(t, err, availability.ErrOverlappingRange)
}

func TestReplaceChannelBlocksKeepsLocalBlocks(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-13"), "booking-1", now))
	require.NoError(t, cal.BlockRange(stay(t, "2026-09-20", "2026-09-22"), availability.ReasonHost, "maintenance", now))
	cal.ReplaceChannelBlocks([]daterange.DateRange{stay(t, "2026-10-01", "2026-10-05")}, "airbnb", now)
	require.Len(t, cal.Blocks, 3)

	// A later sync drops the old feed ranges but never touches booking or
	// host blocks, even when the feed no longer lists the sold nights.
	cal.ReplaceChannelBlocks([]daterange.DateRange{stay(t, "2026-10-10", "2026-10-12")}, "airbnb", now)
	require.Len(t, cal.Blocks, 3)

	var reasons []availability.BlockReason
	for _, b := range cal.Blocks {
		reasons = append(reasons, b.Reason)
	}
	require.Contains(t, reasons, availability.ReasonBooking)
	require.Contains(t, reasons, availability.ReasonHost)
	require.Contains(t, reasons, availability.ReasonChannel)
	require.Equal(t, "airbnb-2026-10-10", cal.Blocks[2].Reference)
}

func TestReplaceChannelBlocksSkipsConflictingFeedRanges(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	cal := availability.NewCalendar("river-loft")
	require.NoError(t, cal.Reserve(stay(t, "2026-09-10", "2026-09-13"), "booking-1", now))

	cal.ReplaceChannelBlocks([]daterange.DateRange{stay(t, "2026-09-11", "2026-09-14")}, "airbnb", now)
	require.Len(t, cal.Blocks, 1)
	require.Equal(t, availability.ReasonBooking, cal.Blocks[0].Reason)
}

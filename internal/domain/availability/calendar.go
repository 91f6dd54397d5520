package availability

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
)

var (
	ErrOverlappingRange = errors.New("availability: range overlaps an existing block")
	ErrBlockNotFound    = errors.New("availability: block not found")
	ErrCalendarMissing  = errors.New("availability: calendar not found")
)

type BlockReason string

const (
	ReasonBooking  BlockReason = "BOOKING"
	ReasonHost     BlockReason = "HOST_BLOCK"
	ReasonCleaning BlockReason = "CLEANING_BUFFER"
	ReasonChannel  BlockReason = "CHANNEL_IMPORT"
)

// Block marks a contiguous unavailable range with its provenance. Channel
// blocks come from external calendar feeds and are replaced wholesale on
// each sync.
type Block struct {
	Range     daterange.DateRange
	Reason    BlockReason
	Reference string
	CreatedAt time.Time
}

// Window is the per-date bookable map the public funnel consumes, keyed by
// yyyy-MM-dd.
type Window map[string]bool

// Bookable reports whether a date is open; dates absent from the window are
// treated as closed.
func (w Window) Bookable(date time.Time) bool {
	return w[daterange.FormatISODate(date)]
}

// Calendar is the authoritative availability state for one property.
type Calendar struct {
	PropertyID properties.PropertyID
	Blocks     []Block
	Version    int64
	events.EventRecorder
}

type Repository interface {
	Calendar(ctx context.Context, id properties.PropertyID) (*Calendar, error)
	Save(ctx context.Context, calendar *Calendar) error
}

func NewCalendar(id properties.PropertyID) *Calendar {
	return &Calendar{PropertyID: id}
}

// CanReserve answers the funnel's range re-check: true when no block touches
// any night of the stay.
func (c *Calendar) CanReserve(r daterange.DateRange) bool {
	for _, block := range c.Blocks {
		if block.Range.Overlaps(r) {
			return false
		}
	}
	return true
}

// Window materializes the bookable map for [from, to), the shape the booking
// widget renders its day grid from.
func (c *Calendar) Window(from, to time.Time) Window {
	w := Window{}
	for d := daterange.Day(from); d.Before(daterange.Day(to)); d = d.AddDate(0, 0, 1) {
		w[daterange.FormatISODate(d)] = c.dayOpen(d)
	}
	return w
}

func (c *Calendar) dayOpen(day time.Time) bool {
	for _, block := range c.Blocks {
		if block.Range.ContainsDate(day) {
			return false
		}
	}
	return true
}

// Reserve blocks a stay for a booking. Rejections are recorded as
// overbooking-prevented events so channel double-sells surface in the back
// office.
func (c *Calendar) Reserve(r daterange.DateRange, bookingRef string, now time.Time) error {
	if !c.CanReserve(r) {
		c.Record(OverbookingPrevented{PropertyID: c.PropertyID, Range: r, At: now.UTC()})
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonBooking, Reference: bookingRef, CreatedAt: now.UTC()})
	c.Record(CalendarBlocked{PropertyID: c.PropertyID, Range: r, Reason: ReasonBooking, At: now.UTC()})
	return nil
}

// BlockRange adds a host or channel block.
func (c *Calendar) BlockRange(r daterange.DateRange, reason BlockReason, reference string, now time.Time) error {
	if reason == "" {
		reason = ReasonHost
	}
	if !c.CanReserve(r) {
		return ErrOverlappingRange
	}
	c.Blocks = append(c.Blocks, Block{Range: r, Reason: reason, Reference: reference, CreatedAt: now.UTC()})
	c.Record(CalendarBlocked{PropertyID: c.PropertyID, Range: r, Reason: reason, At: now.UTC()})
	return nil
}

// Release removes the block carrying the given reference.
func (c *Calendar) Release(reference string, now time.Time) error {
	for i, block := range c.Blocks {
		if block.Reference == reference {
			c.Blocks = append(c.Blocks[:i], c.Blocks[i+1:]...)
			c.Record(CalendarReleased{PropertyID: c.PropertyID, Range: block.Range, Reason: block.Reason, At: now.UTC()})
			return nil
		}
	}
	return ErrBlockNotFound
}

// ReplaceChannelBlocks swaps every channel-imported block for the ranges of
// the latest sync. Booking and host blocks are untouched; a stale feed can
// never free a sold night.
func (c *Calendar) ReplaceChannelBlocks(ranges []daterange.DateRange, source string, now time.Time) {
	kept := c.Blocks[:0]
	for _, block := range c.Blocks {
		if block.Reason != ReasonChannel {
			kept = append(kept, block)
		}
	}
	c.Blocks = kept
	for _, r := range ranges {
		if !c.CanReserve(r) {
			continue
		}
		ref := source + "-" + daterange.FormatISODate(r.CheckIn)
		c.Blocks = append(c.Blocks, Block{Range: r, Reason: ReasonChannel, Reference: ref, CreatedAt: now.UTC()})
	}
	c.Record(ChannelSynced{PropertyID: c.PropertyID, Source: source, Ranges: len(ranges), At: now.UTC()})
}

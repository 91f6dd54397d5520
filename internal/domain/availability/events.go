package availability

import (
	"time"

	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
)

type CalendarBlocked struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e CalendarBlocked) EventName() string     { return "calendar.blocked" }
func (e CalendarBlocked) AggregateID() string   { return string(e.PropertyID) }
func (e CalendarBlocked) OccurredAt() time.Time { return e.At }

type CalendarReleased struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Reason     BlockReason
	At         time.Time
}

func (e CalendarReleased) EventName() string     { return "calendar.released" }
func (e CalendarReleased) AggregateID() string   { return string(e.PropertyID) }
func (e CalendarReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	At         time.Time
}

func (e OverbookingPrevented) EventName() string     { return "calendar.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.PropertyID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }

type ChannelSynced struct {
	PropertyID properties.PropertyID
	Source     string
	Ranges     int
	At         time.Time
}

func (e ChannelSynced) EventName() string     { return "calendar.channel_synced" }
func (e ChannelSynced) AggregateID() string   { return string(e.PropertyID) }
func (e ChannelSynced) OccurredAt() time.Time { return e.At }

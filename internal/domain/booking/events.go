package booking

import (
	"time"

	"staybook/internal/domain/guests"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

type BookingRequested struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	GuestID    guests.GuestID
	Range      daterange.DateRange
	Guests     int
	Total      money.Money
	At         time.Time
}

func (e BookingRequested) EventName() string     { return "booking.requested" }
func (e BookingRequested) AggregateID() string   { return string(e.BookingID) }
func (e BookingRequested) OccurredAt() time.Time { return e.At }

type BookingConfirmed struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Total      money.Money
	At         time.Time
}

func (e BookingConfirmed) EventName() string     { return "booking.confirmed" }
func (e BookingConfirmed) AggregateID() string   { return string(e.BookingID) }
func (e BookingConfirmed) OccurredAt() time.Time { return e.At }

type BookingCancelled struct {
	BookingID  BookingID
	PropertyID properties.PropertyID
	Reason     string
	At         time.Time
}

func (e BookingCancelled) EventName() string     { return "booking.cancelled" }
func (e BookingCancelled) AggregateID() string   { return string(e.BookingID) }
func (e BookingCancelled) OccurredAt() time.Time { return e.At }

type StayStarted struct {
	BookingID BookingID
	At        time.Time
}

func (e StayStarted) EventName() string     { return "booking.stay_started" }
func (e StayStarted) AggregateID() string   { return string(e.BookingID) }
func (e StayStarted) OccurredAt() time.Time { return e.At }

type StayEnded struct {
	BookingID BookingID
	At        time.Time
}

func (e StayEnded) EventName() string     { return "booking.stay_ended" }
func (e StayEnded) AggregateID() string   { return string(e.BookingID) }
func (e StayEnded) OccurredAt() time.Time { return e.At }

package dto

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/shared/daterange"
)

type BookingView struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	GuestID    string `json:"guest_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	Guests     int    `json:"guests"`
	State      string `json:"state"`
	TotalMinor int64  `json:"total_minor_units"`
	Currency   string `json:"currency"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func MapBooking(b *booking.Booking) BookingView {
	if b == nil {
		return BookingView{}
	}
	return BookingView{
		ID:         string(b.ID),
		PropertyID: string(b.PropertyID),
		GuestID:    string(b.GuestID),
		CheckIn:    isoDate(b.Range.CheckIn),
		CheckOut:   isoDate(b.Range.CheckOut),
		Nights:     b.Range.Nights(),
		Guests:     b.Guests,
		State:      string(b.State),
		TotalMinor: b.Total().Amount,
		Currency:   b.Total().Currency,
		Note:       b.Note,
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
	}
}

func MapBookings(items []*booking.Booking) []BookingView {
	out := make([]BookingView, 0, len(items))
	for _, b := range items {
		out = append(out, MapBooking(b))
	}
	return out
}

func isoDate(t time.Time) string {
	return daterange.FormatISODate(t)
}

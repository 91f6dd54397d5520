package dto

import (
	"time"

	"staybook/internal/domain/guests"
)

type GuestView struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Bookings  int    `json:"bookings"`
	CreatedAt string `json:"created_at"`
}

func MapGuest(g *guests.Guest) GuestView {
	if g == nil {
		return GuestView{}
	}
	return GuestView{
		ID:        string(g.ID),
		FullName:  g.FullName,
		Email:     g.Email,
		Phone:     g.Phone,
		Bookings:  g.Bookings,
		CreatedAt: g.CreatedAt.Format(time.RFC3339),
	}
}

func MapGuests(items []*guests.Guest) []GuestView {
	out := make([]GuestView, 0, len(items))
	for _, g := range items {
		out = append(out, MapGuest(g))
	}
	return out
}

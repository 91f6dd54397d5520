package dto

import (
	"time"

	"staybook/internal/domain/reviews"
)

type ReviewView struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	BookingID  string `json:"booking_id,omitempty"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	State      string `json:"state"`
	CreatedAt  string `json:"created_at"`
}

func MapReview(r *reviews.Review) ReviewView {
	if r == nil {
		return ReviewView{}
	}
	return ReviewView{
		ID:         string(r.ID),
		PropertyID: string(r.PropertyID),
		BookingID:  string(r.BookingID),
		AuthorName: r.AuthorName,
		Rating:     r.Rating,
		Text:       r.Text,
		State:      string(r.State),
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
}

func MapReviews(items []*reviews.Review) []ReviewView {
	out := make([]ReviewView, 0, len(items))
	for _, r := range items {
		out = append(out, MapReview(r))
	}
	return out
}

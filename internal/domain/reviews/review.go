package reviews

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/events"
)

var (
	ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")
	ErrNotFound      = errors.New("reviews: not found")
	ErrNotModifiable = errors.New("reviews: rejected reviews cannot be edited")
)

type ReviewID string

type ReviewState string

const (
	StateSubmitted ReviewState = "SUBMITTED"
	StateApproved  ReviewState = "APPROVED"
	StateRejected  ReviewState = "REJECTED"
)

// Review is a guest review tied to a completed booking. The public site only
// shows approved reviews; moderation happens in the back office.
type Review struct {
	ID         ReviewID
	BookingID  booking.BookingID
	PropertyID properties.PropertyID
	AuthorName string
	Rating     int
	Text       string
	State      ReviewState
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	ListByProperty(ctx context.Context, id properties.PropertyID, approvedOnly bool, limit, offset int) ([]*Review, error)
	Save(ctx context.Context, review *Review) error
}

type SubmitParams struct {
	ID         ReviewID
	BookingID  booking.BookingID
	PropertyID properties.PropertyID
	AuthorName string
	Rating     int
	Text       string
	Now        time.Time
}

func Submit(params SubmitParams) (*Review, error) {
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	now := params.Now.UTC()
	review := &Review{
		ID:         params.ID,
		BookingID:  params.BookingID,
		PropertyID: params.PropertyID,
		AuthorName: strings.TrimSpace(params.AuthorName),
		Rating:     params.Rating,
		Text:       strings.TrimSpace(params.Text),
		State:      StateSubmitted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	review.Record(ReviewSubmitted{ReviewID: review.ID, PropertyID: review.PropertyID, Rating: review.Rating, At: now})
	return review, nil
}

func (r *Review) UpdateText(text string, rating int, now time.Time) error {
	if r.State == StateRejected {
		return ErrNotModifiable
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	r.Text = strings.TrimSpace(text)
	r.Rating = rating
	r.UpdatedAt = now.UTC()
	return nil
}

func (r *Review) Approve(now time.Time) {
	r.State = StateApproved
	r.UpdatedAt = now.UTC()
	r.Record(ReviewModerated{ReviewID: r.ID, PropertyID: r.PropertyID, State: r.State, At: r.UpdatedAt})
}

func (r *Review) Reject(now time.Time) {
	r.State = StateRejected
	r.UpdatedAt = now.UTC()
	r.Record(ReviewModerated{ReviewID: r.ID, PropertyID: r.PropertyID, State: r.State, At: r.UpdatedAt})
}

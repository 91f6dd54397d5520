package reviews

import (
	"time"

	"staybook/internal/domain/properties"
)

type ReviewSubmitted struct {
	ReviewID   ReviewID
	PropertyID properties.PropertyID
	Rating     int
	At         time.Time
}

func (e ReviewSubmitted) EventName() string     { return "review.submitted" }
func (e ReviewSubmitted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewSubmitted) OccurredAt() time.Time { return e.At }

type ReviewModerated struct {
	ReviewID   ReviewID
	PropertyID properties.PropertyID
	State      ReviewState
	At         time.Time
}

func (e ReviewModerated) EventName() string     { return "review.moderated" }
func (e ReviewModerated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewModerated) OccurredAt() time.Time { return e.At }

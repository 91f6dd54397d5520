package properties

import "time"

type PropertyCreated struct {
	PropertyID PropertyID
	Slug       string
	At         time.Time
}

func (e PropertyCreated) EventName() string     { return "property.created" }
func (e PropertyCreated) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyCreated) OccurredAt() time.Time { return e.At }

type PropertyPublished struct {
	PropertyID PropertyID
	At         time.Time
}

func (e PropertyPublished) EventName() string     { return "property.published" }
func (e PropertyPublished) AggregateID() string   { return string(e.PropertyID) }
func (e PropertyPublished) OccurredAt() time.Time { return e.At }

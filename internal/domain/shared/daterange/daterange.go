package daterange

import (
	"errors"
	"time"
)

var (
	ErrInvalidRange = errors.New("daterange: check-out must be after check-in")
	ErrBadISODate   = errors.New("daterange: date must be formatted yyyy-MM-dd")
)

// ISOLayout is the canonical wire format for single dates. Availability
// windows are keyed by it and all public query parameters use it.
const ISOLayout = "2006-01-02"

// DefaultHorizonDays bounds how far ahead a stay may be booked.
const DefaultHorizonDays = 90

// DateRange is a half-open stay interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ParseISO builds a range from two yyyy-MM-dd strings.
func ParseISO(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseISODate(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseISODate(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

// Nights returns the number of whole nights covered by the range.
func (dr DateRange) Nights() int {
	return int(dr.CheckOut.Sub(dr.CheckIn).Hours() / 24)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return !t.Before(dr.CheckIn) && t.Before(dr.CheckOut)
}

// Days yields every night of the stay, check-out day excluded.
func (dr DateRange) Days() []time.Time {
	var days []time.Time
	for d := dr.CheckIn; d.Before(dr.CheckOut); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Day truncates a timestamp to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithinHorizon reports whether date falls inside the booking horizon:
// today and today+horizonDays are both selectable, anything earlier than
// today or beyond the horizon is not.
func WithinHorizon(date, today time.Time, horizonDays int) bool {
	date = Day(date)
	today = Day(today)
	if date.Before(today) {
		return false
	}
	return !date.After(today.AddDate(0, 0, horizonDays))
}

func FormatISODate(t time.Time) string {
	return Day(t).Format(ISOLayout)
}

func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return time.Time{}, ErrBadISODate
	}
	return t.UTC(), nil
}

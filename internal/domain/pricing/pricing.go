package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
)

var (
	ErrCurrencyUnset     = errors.New("pricing: currency must be defined")
	ErrNoNights          = errors.New("pricing: nights must be positive")
	ErrNegativeComponent = errors.New("pricing: fee and tax amounts cannot be negative")
	ErrRateCardMissing   = errors.New("pricing: rate card not found")
	ErrNoAccommodation   = errors.New("pricing: quote has no accommodation line")
)

// LineKind tags a quote line explicitly. Earlier revisions classified lines
// by label substring ("night", "Cleaning"), which silently misfiled anything
// a channel renamed; the tag is authoritative now and labels are display-only.
type LineKind string

const (
	KindAccommodation LineKind = "accommodation"
	KindCleaning      LineKind = "cleaning"
	KindFee           LineKind = "fee"
	KindTax           LineKind = "tax"
	KindDiscount      LineKind = "discount"
)

type LineItem struct {
	Kind   LineKind
	Label  string
	Amount money.Money
}

// Quote is the priced response for a stay: every charge as a tagged line
// plus the authoritative total, all in minor units.
type Quote struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Guests     int
	Nights     int
	Currency   string
	LineItems  []LineItem
	Total      money.Money
}

// Calculator produces quotes; implementations may be local rate-card math or
// a remote pricing service.
type Calculator interface {
	Quote(ctx context.Context, input QuoteInput) (Quote, error)
}

type QuoteInput struct {
	PropertyID properties.PropertyID
	Range      daterange.DateRange
	Guests     int
}

// ClassifyLabel is the legacy fallback for lines that arrive untagged from
// external channels. Local quotes never rely on it.
func ClassifyLabel(label string) LineKind {
	switch {
	case strings.Contains(strings.ToLower(label), "night"):
		return KindAccommodation
	case strings.Contains(label, "Cleaning"):
		return KindCleaning
	default:
		return KindFee
	}
}

// Normalize fills missing kinds via the label fallback and recomputes the
// total when it was not supplied.
func (q *Quote) Normalize() error {
	if q.Currency == "" {
		return ErrCurrencyUnset
	}
	if q.Nights <= 0 {
		return ErrNoNights
	}
	sum := money.Money{Amount: 0, Currency: q.Currency}
	for i := range q.LineItems {
		if q.LineItems[i].Kind == "" {
			q.LineItems[i].Kind = ClassifyLabel(q.LineItems[i].Label)
		}
		if q.LineItems[i].Amount.Amount < 0 && q.LineItems[i].Kind != KindDiscount {
			return ErrNegativeComponent
		}
		var err error
		sum, err = sum.Add(q.LineItems[i].Amount)
		if err != nil {
			return err
		}
	}
	if q.Total.IsZero() {
		q.Total = sum
	}
	return nil
}

func (q Quote) accommodation() (money.Money, bool) {
	for _, li := range q.LineItems {
		if li.Kind == KindAccommodation {
			return li.Amount, true
		}
	}
	return money.Money{}, false
}

func (q Quote) cleaning() money.Money {
	for _, li := range q.LineItems {
		if li.Kind == KindCleaning {
			return li.Amount
		}
	}
	return money.Money{Amount: 0, Currency: q.Currency}
}

// BreakdownItem is one extra charge shown to the guest, in display units.
type BreakdownItem struct {
	Kind   LineKind
	Label  string
	Amount int64
}

// Breakdown is the guest-facing price decomposition in whole display units.
// Every line item the total includes is represented, either as the base
// accommodation/cleaning fields or under OtherItems, so the itemization
// always reconciles with Total.
type Breakdown struct {
	BasePrice   int64
	Nights      int
	Subtotal    int64
	CleaningFee int64
	OtherItems  []BreakdownItem
	Total       int64
	Currency    string
}

// NewBreakdown decomposes a quote for display. BasePrice is the per-night
// rate derived from the accommodation line, rounded to the nearest unit.
func NewBreakdown(q Quote) (Breakdown, error) {
	if err := q.Normalize(); err != nil {
		return Breakdown{}, err
	}
	accom, ok := q.accommodation()
	if !ok {
		return Breakdown{}, ErrNoAccommodation
	}
	perNight := money.Money{Amount: accom.Amount / int64(q.Nights), Currency: q.Currency}
	b := Breakdown{
		BasePrice:   perNight.DisplayUnits(),
		Nights:      q.Nights,
		Subtotal:    accom.DisplayUnits(),
		CleaningFee: q.cleaning().DisplayUnits(),
		Total:       q.Total.DisplayUnits(),
		Currency:    q.Currency,
	}
	for _, li := range q.LineItems {
		if li.Kind == KindAccommodation || li.Kind == KindCleaning {
			continue
		}
		b.OtherItems = append(b.OtherItems, BreakdownItem{Kind: li.Kind, Label: li.Label, Amount: li.Amount.DisplayUnits()})
	}
	return b, nil
}

// RateCard is the admin-managed pricing input for one property.
type RateCard struct {
	PropertyID    properties.PropertyID
	NightlyRate   money.Money
	CleaningFee   money.Money
	MinStayNights int
	Version       int64
}

func (rc RateCard) Validate() error {
	if rc.NightlyRate.Currency == "" {
		return ErrCurrencyUnset
	}
	if rc.NightlyRate.Amount < 0 || rc.CleaningFee.Amount < 0 {
		return ErrNegativeComponent
	}
	return nil
}

type RateRepository interface {
	ByProperty(ctx context.Context, id properties.PropertyID) (*RateCard, error)
	Save(ctx context.Context, card *RateCard) error
}

// RateCardCalculator prices stays from the stored rate card.
type RateCardCalculator struct {
	Rates RateRepository
}

func (c RateCardCalculator) Quote(ctx context.Context, input QuoteInput) (Quote, error) {
	card, err := c.Rates.ByProperty(ctx, input.PropertyID)
	if err != nil {
		return Quote{}, err
	}
	if card == nil {
		return Quote{}, ErrRateCardMissing
	}
	if err := card.Validate(); err != nil {
		return Quote{}, err
	}
	nights := input.Range.Nights()
	if nights <= 0 {
		return Quote{}, ErrNoNights
	}
	q := Quote{
		PropertyID: input.PropertyID,
		Range:      input.Range,
		Guests:     input.Guests,
		Nights:     nights,
		Currency:   card.NightlyRate.Currency,
		LineItems: []LineItem{{
			Kind:   KindAccommodation,
			Label:  fmt.Sprintf("%d nights", nights),
			Amount: card.NightlyRate.Multiply(int64(nights)),
		}},
	}
	if !card.CleaningFee.IsZero() {
		q.LineItems = append(q.LineItems, LineItem{Kind: KindCleaning, Label: "Cleaning Fee", Amount: card.CleaningFee})
	}
	if err := q.Normalize(); err != nil {
		return Quote{}, err
	}
	return q, nil
}

var _ Calculator = RateCardCalculator{}

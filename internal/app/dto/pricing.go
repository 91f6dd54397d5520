package dto

import (
	"staybook/internal/domain/pricing"
)

// QuoteLine is one priced charge in minor units, tagged by kind.
type QuoteLine struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Amount int64  `json:"amount_minor_units"`
}

// QuoteView carries the authoritative quote (minor units) next to the
// display breakdown (whole units); clients render the breakdown and submit
// the quote back at checkout.
type QuoteView struct {
	PropertyID string      `json:"property_id"`
	CheckIn    string      `json:"check_in"`
	CheckOut   string      `json:"check_out"`
	Guests     int         `json:"guests"`
	Nights     int         `json:"nights"`
	Currency   string      `json:"currency"`
	LineItems  []QuoteLine `json:"line_items"`
	TotalMinor int64       `json:"total_minor_units"`

	Breakdown *PriceBreakdownView `json:"breakdown,omitempty"`
}

// PriceBreakdownView is the guest-facing decomposition in display units.
type PriceBreakdownView struct {
	BasePrice   int64               `json:"base_price"`
	Nights      int                 `json:"nights"`
	Subtotal    int64               `json:"subtotal"`
	CleaningFee int64               `json:"cleaning_fee"`
	OtherItems  []BreakdownItemView `json:"other_items,omitempty"`
	Total       int64               `json:"total"`
	Currency    string              `json:"currency"`
}

type BreakdownItemView struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

func MapQuote(q pricing.Quote, breakdown *pricing.Breakdown) QuoteView {
	view := QuoteView{
		PropertyID: string(q.PropertyID),
		CheckIn:    isoDate(q.Range.CheckIn),
		CheckOut:   isoDate(q.Range.CheckOut),
		Guests:     q.Guests,
		Nights:     q.Nights,
		Currency:   q.Currency,
		TotalMinor: q.Total.Amount,
	}
	for _, li := range q.LineItems {
		view.LineItems = append(view.LineItems, QuoteLine{Kind: string(li.Kind), Label: li.Label, Amount: li.Amount.Amount})
	}
	if breakdown != nil {
		view.Breakdown = MapBreakdown(*breakdown)
	}
	return view
}

func MapBreakdown(b pricing.Breakdown) *PriceBreakdownView {
	view := &PriceBreakdownView{
		BasePrice:   b.BasePrice,
		Nights:      b.Nights,
		Subtotal:    b.Subtotal,
		CleaningFee: b.CleaningFee,
		Total:       b.Total,
		Currency:    b.Currency,
	}
	for _, item := range b.OtherItems {
		view.OtherItems = append(view.OtherItems, BreakdownItemView{Kind: string(item.Kind), Label: item.Label, Amount: item.Amount})
	}
	return view
}

// RateCardView is the admin rates form.
type RateCardView struct {
	PropertyID       string `json:"property_id"`
	NightlyRateMinor int64  `json:"nightly_rate_minor_units"`
	CleaningFeeMinor int64  `json:"cleaning_fee_minor_units"`
	Currency         string `json:"currency"`
	MinStayNights    int    `json:"min_stay_nights"`
}

func MapRateCard(card *pricing.RateCard) RateCardView {
	if card == nil {
		return RateCardView{}
	}
	return RateCardView{
		PropertyID:       string(card.PropertyID),
		NightlyRateMinor: card.NightlyRate.Amount,
		CleaningFeeMinor: card.CleaningFee.Amount,
		Currency:         card.NightlyRate.Currency,
		MinStayNights:    card.MinStayNights,
	}
}

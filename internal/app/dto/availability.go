package dto

import (
	"sort"

	"staybook/internal/domain/availability"
	"staybook/internal/domain/properties"
)

// AvailabilityWindow is the public funnel's day map: ISO date -> bookable.
type AvailabilityWindow struct {
	PropertyID string          `json:"property_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Days       map[string]bool `json:"days"`
}

func MapWindow(id properties.PropertyID, from, to string, w availability.Window) AvailabilityWindow {
	return AvailabilityWindow{PropertyID: string(id), From: from, To: to, Days: w}
}

// CalendarBlockView is the admin-side view of raw calendar blocks.
type CalendarBlockView struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

func MapBlocks(cal *availability.Calendar) []CalendarBlockView {
	if cal == nil {
		return nil
	}
	out := make([]CalendarBlockView, 0, len(cal.Blocks))
	for _, b := range cal.Blocks {
		out = append(out, CalendarBlockView{
			From:      isoDate(b.Range.CheckIn),
			To:        isoDate(b.Range.CheckOut),
			Reason:    string(b.Reason),
			Reference: b.Reference,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// RangeCheck is the answer to the funnel's per-selection re-check.
type RangeCheck struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Available  bool   `json:"available"`
}

package dto

import (
	"staybook/internal/domain/properties"
)

type PropertyView struct {
	ID         string   `json:"id"`
	Slug       string   `json:"slug"`
	Name       string   `json:"name"`
	Headline   string   `json:"headline,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	MaxGuests  int      `json:"max_guests"`
	Bedrooms   int      `json:"bedrooms"`
	Bathrooms  int      `json:"bathrooms"`
	Amenities  []string `json:"amenities,omitempty"`
	HouseRules []string `json:"house_rules,omitempty"`
	Photos     []string `json:"photos,omitempty"`
	State      string   `json:"state"`
}

func MapProperty(p *properties.Property) PropertyView {
	if p == nil {
		return PropertyView{}
	}
	return PropertyView{
		ID:         string(p.ID),
		Slug:       p.Slug,
		Name:       p.Name,
		Headline:   p.Headline,
		Summary:    p.Summary,
		MaxGuests:  p.MaxGuests,
		Bedrooms:   p.Bedrooms,
		Bathrooms:  p.Bathrooms,
		Amenities:  p.Amenities,
		HouseRules: p.HouseRules,
		Photos:     p.Photos,
		State:      string(p.State),
	}
}

func MapProperties(items []*properties.Property) []PropertyView {
	out := make([]PropertyView, 0, len(items))
	for _, p := range items {
		out = append(out, MapProperty(p))
	}
	return out
}

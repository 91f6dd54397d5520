package properties

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/events"
)

var (
	ErrNameRequired = errors.New("properties: name is required")
	ErrSlugRequired = errors.New("properties: slug is required")
	ErrGuestsLimit  = errors.New("properties: max guests must be at least 1")
	ErrInvalidState = errors.New("properties: invalid state transition")
	ErrNotFound     = errors.New("properties: not found")
)

type PropertyID string

type PropertyState string

const (
	StateDraft     PropertyState = "DRAFT"
	StatePublished PropertyState = "PUBLISHED"
	StateArchived  PropertyState = "ARCHIVED"
)

// Property is the content side of a rental unit: what the public site shows
// and what the back office edits. Pricing lives in the rate card, calendar
// state in the availability calendar.
type Property struct {
	ID         PropertyID
	Slug       string
	Name       string
	Summary    string
	Headline   string
	MaxGuests  int
	Bedrooms   int
	Bathrooms  int
	Amenities  []string
	HouseRules []string
	Photos     []string
	State      PropertyState
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Version    int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	BySlug(ctx context.Context, slug string) (*Property, error)
	List(ctx context.Context, publishedOnly bool) ([]*Property, error)
	Save(ctx context.Context, p *Property) error
}

type CreateParams struct {
	ID         PropertyID
	Slug       string
	Name       string
	Summary    string
	Headline   string
	MaxGuests  int
	Bedrooms   int
	Bathrooms  int
	Amenities  []string
	HouseRules []string
	Photos     []string
	Now        time.Time
}

func New(params CreateParams) (*Property, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Slug) == "" {
		return nil, ErrSlugRequired
	}
	if params.MaxGuests < 1 {
		return nil, ErrGuestsLimit
	}
	now := params.Now.UTC()
	p := &Property{
		ID:         params.ID,
		Slug:       strings.ToLower(strings.TrimSpace(params.Slug)),
		Name:       strings.TrimSpace(params.Name),
		Summary:    params.Summary,
		Headline:   params.Headline,
		MaxGuests:  params.MaxGuests,
		Bedrooms:   params.Bedrooms,
		Bathrooms:  params.Bathrooms,
		Amenities:  params.Amenities,
		HouseRules: params.HouseRules,
		Photos:     params.Photos,
		State:      StateDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	p.Record(PropertyCreated{PropertyID: p.ID, Slug: p.Slug, At: now})
	return p, nil
}

func (p *Property) Publish(now time.Time) error {
	if p.State == StateArchived {
		return ErrInvalidState
	}
	p.State = StatePublished
	p.UpdatedAt = now.UTC()
	p.Record(PropertyPublished{PropertyID: p.ID, At: p.UpdatedAt})
	return nil
}

func (p *Property) Archive(now time.Time) error {
	p.State = StateArchived
	p.UpdatedAt = now.UTC()
	return nil
}

// UpdateContent replaces the editable content fields in one pass; the back
// office saves whole forms, not field deltas.
func (p *Property) UpdateContent(name, summary, headline string, maxGuests int, amenities, houseRules []string, now time.Time) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if maxGuests < 1 {
		return ErrGuestsLimit
	}
	p.Name = strings.TrimSpace(name)
	p.Summary = summary
	p.Headline = headline
	p.MaxGuests = maxGuests
	p.Amenities = amenities
	p.HouseRules = houseRules
	p.UpdatedAt = now.UTC()
	return nil
}

func (p *Property) AttachPhoto(url string, now time.Time) {
	p.Photos = append(p.Photos, url)
	p.UpdatedAt = now.UTC()
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

// PropertyRepository keeps properties in a mutex-guarded map. Suitable for
// tests and single-node demo runs.
type PropertyRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]*domainproperties.Property
}

func NewPropertyRepository() *PropertyRepository {
	return &PropertyRepository{items: make(map[domainproperties.PropertyID]*domainproperties.Property)}
}

func (r *PropertyRepository) ByID(ctx context.Context, id domainproperties.PropertyID) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	property, ok := r.items[id]
	if !ok {
		return nil, domainproperties.ErrNotFound
	}
	return property, nil
}

func (r *PropertyRepository) BySlug(ctx context.Context, slug string) (*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, property := range r.items {
		if property.Slug == slug {
			return property, nil
		}
	}
	return nil, domainproperties.ErrNotFound
}

func (r *PropertyRepository) List(ctx context.Context, publishedOnly bool) ([]*domainproperties.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainproperties.Property, 0, len(r.items))
	for _, property := range r.items {
		if publishedOnly && property.State != domainproperties.StatePublished {
			continue
		}
		out = append(out, property)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r *PropertyRepository) Save(ctx context.Context, property *domainproperties.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	property.Version++
	r.items[property.ID] = property
	return nil
}

// CalendarRepository keeps one calendar per property.
type CalendarRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{items: make(map[domainproperties.PropertyID]*domainavailability.Calendar)}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainproperties.PropertyID) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.items[id]
	if !ok {
		return nil, domainavailability.ErrCalendarMissing
	}
	return cal, nil
}

func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cal.Version++
	r.items[cal.PropertyID] = cal
	return nil
}

// BookingRepository keeps bookings ordered by creation time on listing.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	return record, nil
}

func (r *BookingRepository) List(ctx context.Context, limit, offset int) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sorted()
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *BookingRepository) ListByProperty(ctx context.Context, id domainproperties.PropertyID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domainbooking.Booking
	for _, record := range r.sorted() {
		if record.PropertyID == id {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *BookingRepository) Save(ctx context.Context, record *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record.Version++
	r.items[record.ID] = record
	return nil
}

func (r *BookingRepository) sorted() []*domainbooking.Booking {
	out := make([]*domainbooking.Booking, 0, len(r.items))
	for _, record := range r.items {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ReviewRepository keeps reviews newest-first per property.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainreviews.ReviewID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainreviews.ReviewID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review, nil
}

func (r *ReviewRepository) ListByProperty(ctx context.Context, id domainproperties.PropertyID, approvedOnly bool, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matches []*domainreviews.Review
	for _, review := range r.items {
		if review.PropertyID != id {
			continue
		}
		if approvedOnly && review.State != domainreviews.StateApproved {
			continue
		}
		matches = append(matches, review)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })
	if offset >= len(matches) {
		return nil, nil
	}
	matches = matches[offset:]
	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.Version++
	r.items[review.ID] = review
	return nil
}

// GuestRepository indexes guests by id and by normalized email.
type GuestRepository struct {
	mu      sync.RWMutex
	items   map[domainguests.GuestID]*domainguests.Guest
	byEmail map[string]domainguests.GuestID
}

func NewGuestRepository() *GuestRepository {
	return &GuestRepository{
		items:   make(map[domainguests.GuestID]*domainguests.Guest),
		byEmail: make(map[string]domainguests.GuestID),
	}
}

func (r *GuestRepository) ByID(ctx context.Context, id domainguests.GuestID) (*domainguests.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	guest, ok := r.items[id]
	if !ok {
		return nil, domainguests.ErrNotFound
	}
	return guest, nil
}

func (r *GuestRepository) ByEmail(ctx context.Context, email string) (*domainguests.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domainguests.ErrNotFound
	}
	return r.items[id], nil
}

func (r *GuestRepository) List(ctx context.Context, limit, offset int) ([]*domainguests.Guest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainguests.Guest, 0, len(r.items))
	for _, guest := range r.items {
		out = append(out, guest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *GuestRepository) Save(ctx context.Context, guest *domainguests.Guest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	guest.Version++
	r.items[guest.ID] = guest
	r.byEmail[guest.Email] = guest.ID
	return nil
}

package memory

import (
	"context"
	"sync"

	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
)

// RateRepository keeps one rate card per property.
type RateRepository struct {
	mu    sync.RWMutex
	items map[domainproperties.PropertyID]*domainpricing.RateCard
}

func NewRateRepository() *RateRepository {
	return &RateRepository{items: make(map[domainproperties.PropertyID]*domainpricing.RateCard)}
}

func (r *RateRepository) ByProperty(ctx context.Context, id domainproperties.PropertyID) (*domainpricing.RateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	card, ok := r.items[id]
	if !ok {
		return nil, domainpricing.ErrRateCardMissing
	}
	return card, nil
}

func (r *RateRepository) Save(ctx context.Context, card *domainpricing.RateCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	card.Version++
	r.items[card.PropertyID] = card
	return nil
}

var _ domainpricing.RateRepository = (*RateRepository)(nil)

package memory

import (
	"context"
	"errors"

	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo   domainproperties.Repository
	AvailabilityRepo domainavailability.Repository
	BookingsRepo     domainbooking.Repository
	RatesRepo        domainpricing.RateRepository
	ReviewsRepo      domainreviews.Repository
	GuestsRepo       domainguests.Repository
	AccountsRepo     domainauth.AccountRepository
}

// NewFactory builds a factory with fresh empty repositories.
func NewFactory() Factory {
	return Factory{
		PropertiesRepo:   NewPropertyRepository(),
		AvailabilityRepo: NewCalendarRepository(),
		BookingsRepo:     NewBookingRepository(),
		RatesRepo:        NewRateRepository(),
		ReviewsRepo:      NewReviewRepository(),
		GuestsRepo:       NewGuestRepository(),
		AccountsRepo:     NewAccountRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided
// but the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.AvailabilityRepo == nil || f.BookingsRepo == nil ||
		f.RatesRepo == nil || f.ReviewsRepo == nil || f.GuestsRepo == nil || f.AccountsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{factory: f}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	factory Factory
}

func (u *Unit) Properties() domainproperties.Repository     { return u.factory.PropertiesRepo }
func (u *Unit) Availability() domainavailability.Repository { return u.factory.AvailabilityRepo }
func (u *Unit) Bookings() domainbooking.Repository          { return u.factory.BookingsRepo }
func (u *Unit) Rates() domainpricing.RateRepository         { return u.factory.RatesRepo }
func (u *Unit) Reviews() domainreviews.Repository           { return u.factory.ReviewsRepo }
func (u *Unit) Guests() domainguests.Repository             { return u.factory.GuestsRepo }
func (u *Unit) Accounts() domainauth.AccountRepository      { return u.factory.AccountsRepo }

func (u *Unit) Commit(ctx context.Context) error   { return nil }
func (u *Unit) Rollback(ctx context.Context) error { return nil }

var _ uow.Factory = Factory{}

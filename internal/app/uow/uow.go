package uow

import (
	"context"

	domainauth "staybook/internal/domain/auth"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

// UnitOfWork bundles the repositories touched inside one transaction
// boundary. The memory implementation provides no isolation; the mongo one
// maps Commit/Rollback onto driver sessions where configured.
type UnitOfWork interface {
	Properties() domainproperties.Repository
	Availability() domainavailability.Repository
	Bookings() domainbooking.Repository
	Rates() domainpricing.RateRepository
	Reviews() domainreviews.Repository
	Guests() domainguests.Repository
	Accounts() domainauth.AccountRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Factory starts unit-of-work instances.
type Factory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
)

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo   domainproperties.Repository
	AvailabilityRepo domainavailability.Repository
	BookingsRepo     domainbooking.Repository
	RatesRepo        domainpricing.RateRepository
	ReviewsRepo      domainreviews.Repository
	GuestsRepo       domainguests.Repository
	AccountsRepo     domainauth.AccountRepository
}

// NewFactory builds a factory with repositories over the given database.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:               db,
		PropertiesRepo:   NewPropertyRepository(db),
		AvailabilityRepo: NewCalendarRepository(db),
		BookingsRepo:     NewBookingRepository(db),
		RatesRepo:        NewRateRepository(db),
		ReviewsRepo:      NewReviewRepository(db),
		GuestsRepo:       NewGuestRepository(db),
		AccountsRepo:     NewAccountRepository(db),
	}
}

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{factory: f, session: session}, nil
}

type Unit struct {
	factory Factory
	session mongo.Session
}

func (u *Unit) Properties() domainproperties.Repository     { return u.factory.PropertiesRepo }
func (u *Unit) Availability() domainavailability.Repository { return u.factory.AvailabilityRepo }
func (u *Unit) Bookings() domainbooking.Repository          { return u.factory.BookingsRepo }
func (u *Unit) Rates() domainpricing.RateRepository         { return u.factory.RatesRepo }
func (u *Unit) Reviews() domainreviews.Repository           { return u.factory.ReviewsRepo }
func (u *Unit) Guests() domainguests.Repository             { return u.factory.GuestsRepo }
func (u *Unit) Accounts() domainauth.AccountRepository      { return u.factory.AccountsRepo }

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the Mongo session visible to downstream repositories.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var _ uow.Factory = Factory{}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/security"
)

type propertyFixture struct {
	ID               string   `json:"id"`
	Slug             string   `json:"slug"`
	Name             string   `json:"name"`
	Headline         string   `json:"headline"`
	Summary          string   `json:"summary"`
	MaxGuests        int      `json:"max_guests"`
	Bedrooms         int      `json:"bedrooms"`
	Bathrooms        int      `json:"bathrooms"`
	Amenities        []string `json:"amenities"`
	HouseRules       []string `json:"house_rules"`
	Photos           []string `json:"photos"`
	NightlyRateMinor int64    `json:"nightly_rate_minor"`
	CleaningFeeMinor int64    `json:"cleaning_fee_minor"`
	Currency         string   `json:"currency"`
	MinStayNights    int      `json:"min_stay_nights"`
}

// loadPropertyFixtures imports demo properties so the in-memory mode is
// usable straight from a clean start. Missing file is not an error.
func loadPropertyFixtures(ctx context.Context, factory uow.Factory, logger *slog.Logger) {
	path := os.Getenv("PROPERTY_FIXTURES")
	if path == "" {
		path = filepath.Join("data", "properties.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return
		}
		logger.Warn("property fixtures unreadable", "error", err, "path", path)
		return
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		logger.Warn("property fixtures malformed", "error", err, "path", path)
		return
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		logger.Error("cannot open unit for fixtures", "error", err)
		return
	}
	defer unit.Rollback(ctx)

	now := time.Now()
	for _, fx := range fixtures {
		id := fx.ID
		if id == "" {
			id = uuid.NewString()
		}
		property, err := domainproperties.New(domainproperties.CreateParams{
			ID:         domainproperties.PropertyID(id),
			Slug:       fx.Slug,
			Name:       fx.Name,
			Summary:    fx.Summary,
			Headline:   fx.Headline,
			MaxGuests:  fx.MaxGuests,
			Bedrooms:   fx.Bedrooms,
			Bathrooms:  fx.Bathrooms,
			Amenities:  append([]string(nil), fx.Amenities...),
			HouseRules: append([]string(nil), fx.HouseRules...),
			Photos:     append([]string(nil), fx.Photos...),
			Now:        now,
		})
		if err != nil {
			logger.Error("fixture invalid", "slug", fx.Slug, "error", err)
			continue
		}
		if err := property.Publish(now); err != nil {
			logger.Error("fixture publish failed", "slug", fx.Slug, "error", err)
			continue
		}
		if err := unit.Properties().Save(ctx, property); err != nil {
			logger.Error("cannot store fixture property", "slug", fx.Slug, "error", err)
			continue
		}

		if fx.NightlyRateMinor > 0 {
			nightly, err := money.New(fx.NightlyRateMinor, fx.Currency)
			if err != nil {
				logger.Error("fixture rate invalid", "slug", fx.Slug, "error", err)
				continue
			}
			cleaning, err := money.New(fx.CleaningFeeMinor, fx.Currency)
			if err != nil {
				logger.Error("fixture cleaning fee invalid", "slug", fx.Slug, "error", err)
				continue
			}
			card := &domainpricing.RateCard{
				PropertyID:    property.ID,
				NightlyRate:   nightly,
				CleaningFee:   cleaning,
				MinStayNights: fx.MinStayNights,
			}
			if err := card.Validate(); err != nil {
				logger.Error("fixture rate card invalid", "slug", fx.Slug, "error", err)
				continue
			}
			if err := unit.Rates().Save(ctx, card); err != nil {
				logger.Error("cannot store fixture rate card", "slug", fx.Slug, "error", err)
				continue
			}
		}
		logger.Info("property fixture imported", "property_id", property.ID, "slug", property.Slug)
	}
	if err := unit.Commit(ctx); err != nil {
		logger.Error("fixture commit failed", "error", err)
	}
}

// seedAdminAccount creates the back-office login from ADMIN_EMAIL and
// ADMIN_PASSWORD. Without both the admin surface stays locked.
func seedAdminAccount(ctx context.Context, factory uow.Factory, logger *slog.Logger) {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Warn("ADMIN_EMAIL/ADMIN_PASSWORD not set, admin login disabled")
		return
	}

	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		logger.Error("cannot open unit for admin seed", "error", err)
		return
	}
	defer unit.Rollback(ctx)

	if _, err := unit.Accounts().ByEmail(ctx, email); err == nil {
		return
	} else if !errors.Is(err, domainauth.ErrAccountNotFound) {
		logger.Error("admin lookup failed", "error", err)
		return
	}

	hash, err := security.BcryptHasher{}.Hash(password)
	if err != nil {
		logger.Error("admin password hash failed", "error", err)
		return
	}
	account := &domainauth.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := unit.Accounts().Save(ctx, account); err != nil {
		logger.Error("cannot store admin account", "error", err)
		return
	}
	if err := unit.Commit(ctx); err != nil {
		logger.Error("admin seed commit failed", "error", err)
		return
	}
	logger.Info("admin account ready", "email", email)
}

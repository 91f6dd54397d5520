package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "staybook/internal/app/handlers/booking"
	reviewsapp "staybook/internal/app/handlers/reviews"
	domainauth "staybook/internal/domain/auth"
	domainavailability "staybook/internal/domain/availability"
	domainbooking "staybook/internal/domain/booking"
	domainguests "staybook/internal/domain/guests"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	domainreviews "staybook/internal/domain/reviews"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/funnel"
	"staybook/internal/infra/storage/s3"
)

// respondError maps domain sentinels onto HTTP statuses. Anything unmapped is
// a 500 with the message withheld.
func respondError(c *gin.Context, err error) {
	switch {
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case isValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domainauth.ErrBadCredentials),
		errors.Is(err, domainauth.ErrSessionNotFound),
		errors.Is(err, domainauth.ErrSessionExpired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domainproperties.ErrNotFound) ||
		errors.Is(err, domainbooking.ErrNotFound) ||
		errors.Is(err, domainreviews.ErrNotFound) ||
		errors.Is(err, domainguests.ErrNotFound) ||
		errors.Is(err, domainpricing.ErrRateCardMissing) ||
		errors.Is(err, domainavailability.ErrCalendarMissing) ||
		errors.Is(err, domainavailability.ErrBlockNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, domainavailability.ErrOverlappingRange) ||
		errors.Is(err, domainbooking.ErrInvalidState) ||
		errors.Is(err, funnel.ErrSuperseded)
}

func isValidation(err error) bool {
	return errors.Is(err, domainbooking.ErrCheckInInPast) ||
		errors.Is(err, domainbooking.ErrBeyondHorizon) ||
		errors.Is(err, domainbooking.ErrBelowMinStay) ||
		errors.Is(err, domainbooking.ErrInvalidGuests) ||
		errors.Is(err, domainbooking.ErrZeroTotal) ||
		errors.Is(err, bookingapp.ErrPropertyNotBookable) ||
		errors.Is(err, reviewsapp.ErrStayNotCompleted) ||
		errors.Is(err, domainreviews.ErrInvalidRating) ||
		errors.Is(err, domainreviews.ErrNotModifiable) ||
		errors.Is(err, domainpricing.ErrNegativeComponent) ||
		errors.Is(err, domainpricing.ErrCurrencyUnset) ||
		errors.Is(err, domainpricing.ErrNoNights) ||
		errors.Is(err, domainproperties.ErrNameRequired) ||
		errors.Is(err, domainproperties.ErrSlugRequired) ||
		errors.Is(err, domainproperties.ErrGuestsLimit) ||
		errors.Is(err, domainproperties.ErrInvalidState) ||
		errors.Is(err, domainguests.ErrEmailInvalid) ||
		errors.Is(err, domainguests.ErrNameRequired) ||
		errors.Is(err, daterange.ErrInvalidRange) ||
		errors.Is(err, daterange.ErrBadISODate) ||
		errors.Is(err, money.ErrInvalidCurrency) ||
		errors.Is(err, money.ErrCurrencyMismatch) ||
		errors.Is(err, s3.ErrUnsupportedPhotoType) ||
		errors.Is(err, funnel.ErrInvalidGuests) ||
		errors.Is(err, funnel.ErrNotReady) ||
		errors.Is(err, funnel.ErrNotAvailable)
}

package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	availabilityapp "rentora/internal/app/handlers/availability"
	bookingapp "rentora/internal/app/handlers/booking"
	domainavailability "rentora/internal/domain/availability"
	domainbooking "rentora/internal/domain/booking"
	domainpromo "rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
	"rentora/internal/infra/validation"
)

// writeError maps application and domain failures onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domainbooking.ErrBookingNotFound),
		errors.Is(err, domainproperty.ErrPropertyNotFound),
		errors.Is(err, domainpromo.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domainbooking.ErrConflict),
		errors.Is(err, domainavailability.ErrOverlappingRange):
		status = http.StatusConflict
	case errors.Is(err, bookingapp.ErrNotBookingOwner),
		errors.Is(err, bookingapp.ErrNotBookingParty),
		errors.Is(err, availabilityapp.ErrNotPropertyHost):
		status = http.StatusForbidden
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, domainbooking.ErrCancellationWindowClosed):
		status = http.StatusUnprocessableEntity
	case bookingapp.IsValidationFailure(err), validation.IsInvalid(err):
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// requireUser reads the authenticated caller propagated by the edge proxy.
func requireUser(c *gin.Context) (string, bool) {
	user := c.GetHeader("X-User-ID")
	if user == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
		return "", false
	}
	return user, true
}

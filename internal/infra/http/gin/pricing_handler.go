package ginserver

import (
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"rentora/internal/app/dto"
	pricingapp "rentora/internal/app/handlers/pricing"
	"rentora/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
	checkIn, err := parseDateQuery(c, "check_in", time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	checkOut, err := parseDateQuery(c, "check_out", time.Time{})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	months := 0
	if raw := c.Query("months"); raw != "" {
		months, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid months"})
			return
		}
	}
	q := pricingapp.QuotePriceQuery{
		PropertyID: c.Param("id"),
		GuestID:    c.GetHeader("X-User-ID"),
		Kind:       c.DefaultQuery("kind", "DAILY"),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Months:     months,
		PromoCode:  c.Query("promo_code"),
	}
	result, err := queries.Ask[pricingapp.QuotePriceQuery, *dto.Quote](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}

package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	pricingapp "staybook/internal/app/handlers/pricing"
	"staybook/internal/app/queries"
)

type PricingHTTP interface {
	Quote(c *gin.Context)
	Rates(c *gin.Context)
	UpdateRates(c *gin.Context)
}

type PricingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

func (h PricingHandler) Quote(c *gin.Context) {
	guests, _ := strconv.Atoi(c.Query("guests"))
	query := pricingapp.GetQuoteQuery{
		PropertyID: c.Param("id"),
		CheckIn:    c.Query("check_in"),
		CheckOut:   c.Query("check_out"),
		Guests:     guests,
	}
	result, err := queries.Ask[pricingapp.GetQuoteQuery, dto.QuoteView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Rates(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	query := pricingapp.GetRateCardQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[pricingapp.GetRateCardQuery, dto.RateCardView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type rateCardRequest struct {
	NightlyRateMinor int64  `json:"nightly_rate_minor"`
	CleaningFeeMinor int64  `json:"cleaning_fee_minor"`
	Currency         string `json:"currency"`
	MinStayNights    int    `json:"min_stay_nights"`
}

func (h PricingHandler) UpdateRates(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req rateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := pricingapp.UpdateRateCardCommand{
		PropertyID:       c.Param("id"),
		NightlyRateMinor: req.NightlyRateMinor,
		CleaningFeeMinor: req.CleaningFeeMinor,
		Currency:         req.Currency,
		MinStayNights:    req.MinStayNights,
	}
	result, err := commands.Dispatch[pricingapp.UpdateRateCardCommand, dto.RateCardView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}

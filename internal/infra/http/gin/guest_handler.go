package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	guestsapp "staybook/internal/app/handlers/guests"
	"staybook/internal/app/queries"
)

type GuestHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
}

type GuestHandler struct {
	Queries queries.Bus
}

func (h GuestHandler) List(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	query := guestsapp.ListGuestsQuery{Limit: limit, Offset: offset}
	result, err := queries.Ask[guestsapp.ListGuestsQuery, []dto.GuestView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

func (h GuestHandler) Get(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	query := guestsapp.GetGuestQuery{GuestID: c.Param("id")}
	result, err := queries.Ask[guestsapp.GetGuestQuery, dto.GuestView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ GuestHTTP = GuestHandler{}

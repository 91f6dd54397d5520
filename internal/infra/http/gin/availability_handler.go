package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	availabilityapp "staybook/internal/app/handlers/availability"
	"staybook/internal/app/queries"
	"staybook/internal/domain/shared/daterange"
)

type AvailabilityHTTP interface {
	Window(c *gin.Context)
	Check(c *gin.Context)
	Blocks(c *gin.Context)
	Block(c *gin.Context)
	Release(c *gin.Context)
}

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// Window serves the widget's day map. from/to are optional yyyy-MM-dd
// bounds; omitted they default to the full booking horizon.
func (h AvailabilityHandler) Window(c *gin.Context) {
	from, _ := time.Parse(daterange.ISOLayout, c.Query("from"))
	to, _ := time.Parse(daterange.ISOLayout, c.Query("to"))
	query := availabilityapp.GetWindowQuery{PropertyID: c.Param("id"), From: from, To: to}
	result, err := queries.Ask[availabilityapp.GetWindowQuery, dto.AvailabilityWindow](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Check(c *gin.Context) {
	query := availabilityapp.CheckRangeQuery{
		PropertyID: c.Param("id"),
		CheckIn:    c.Query("check_in"),
		CheckOut:   c.Query("check_out"),
	}
	result, err := queries.Ask[availabilityapp.CheckRangeQuery, dto.RangeCheck](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Blocks(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	query := availabilityapp.ListBlocksQuery{PropertyID: c.Param("id")}
	result, err := queries.Ask[availabilityapp.ListBlocksQuery, []dto.CalendarBlockView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

type blockRequest struct {
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Reference string `json:"reference"`
}

func (h AvailabilityHandler) Block(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := availabilityapp.BlockRangeCommand{
		PropertyID: c.Param("id"),
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		Reference:  req.Reference,
	}
	result, err := commands.Dispatch[availabilityapp.BlockRangeCommand, *availabilityapp.BlockRangeResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h AvailabilityHandler) Release(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	cmd := availabilityapp.ReleaseBlockCommand{
		PropertyID: c.Param("id"),
		Reference:  c.Param("reference"),
	}
	if _, err := commands.Dispatch[availabilityapp.ReleaseBlockCommand, struct{}](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ AvailabilityHTTP = AvailabilityHandler{}

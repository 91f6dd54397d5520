package ginserver

import (
	"net/http"
	"strconv"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/queries"
)

type ReviewHTTP interface {
	List(c *gin.Context)
	Submit(c *gin.Context)
	Moderate(c *gin.Context)
	Edit(c *gin.Context)
}

type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

// List returns approved reviews for everyone; admins see the full queue.
func (h ReviewHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	query := reviewsapp.ListReviewsQuery{
		PropertyID:   c.Param("id"),
		ApprovedOnly: !isAdmin(c),
		Limit:        limit,
		Offset:       offset,
	}
	result, err := queries.Ask[reviewsapp.ListReviewsQuery, []dto.ReviewView](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": result})
}

type submitReviewRequest struct {
	BookingID  string `json:"booking_id"`
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		BookingID:  req.BookingID,
		AuthorName: req.AuthorName,
		Rating:     req.Rating,
		Text:       req.Text,
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, dto.ReviewView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type moderateReviewRequest struct {
	Approve bool `json:"approve"`
}

func (h ReviewHandler) Moderate(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req moderateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reviewsapp.ModerateReviewCommand{ReviewID: c.Param("id"), Approve: req.Approve}
	result, err := commands.Dispatch[reviewsapp.ModerateReviewCommand, dto.ReviewView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type editReviewRequest struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

func (h ReviewHandler) Edit(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req editReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	cmd := reviewsapp.EditReviewCommand{ReviewID: c.Param("id"), Text: req.Text, Rating: req.Rating}
	result, err := commands.Dispatch[reviewsapp.EditReviewCommand, dto.ReviewView](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}

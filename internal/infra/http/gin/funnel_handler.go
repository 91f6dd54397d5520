package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/funnel"
)

type FunnelHTTP interface {
	CreateSession(c *gin.Context)
	GetSession(c *gin.Context)
	Select(c *gin.Context)
	Checkout(c *gin.Context)
}

// FunnelHandler keeps live booking-widget sessions server side, keyed by an
// opaque ID handed to the client. Sessions expire after TTL of inactivity.
type FunnelHandler struct {
	Commands      commands.Bus
	Gateway       *funnel.Gateway
	HorizonDays   int
	MinStayNights int
	Policy        funnel.FallbackPolicy
	TTL           time.Duration
	Logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]*funnelEntry
}

type funnelEntry struct {
	session    *funnel.Session
	propertyID string
	deadline   time.Time
}

type createSessionRequest struct {
	PropertyID string `json:"property_id"`
}

type sessionView struct {
	SessionID  string         `json:"session_id"`
	PropertyID string         `json:"property_id"`
	Phase      string         `json:"phase"`
	Available  *bool          `json:"available,omitempty"`
	Message    string         `json:"message,omitempty"`
	Quote      *dto.QuoteView `json:"quote,omitempty"`
}

func (h *FunnelHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "property_id required"})
		return
	}
	session := funnel.NewSession(funnel.Config{
		PropertyID:    domainproperties.PropertyID(req.PropertyID),
		HorizonDays:   h.HorizonDays,
		MinStayNights: h.MinStayNights,
		Policy:        h.Policy,
		Logger:        h.Logger,
	}, h.Gateway, h.Gateway)
	session.Load(c.Request.Context())

	id := uuid.NewString()
	h.mu.Lock()
	if h.sessions == nil {
		h.sessions = make(map[string]*funnelEntry)
	}
	h.purgeLocked(time.Now())
	h.sessions[id] = &funnelEntry{session: session, propertyID: req.PropertyID, deadline: time.Now().Add(h.ttl())}
	h.mu.Unlock()

	c.JSON(http.StatusCreated, h.view(id, req.PropertyID, session))
}

func (h *FunnelHandler) GetSession(c *gin.Context) {
	id := c.Param("id")
	entry, ok := h.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, h.view(id, entry.propertyID, entry.session))
}

type selectRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

func (h *FunnelHandler) Select(c *gin.Context) {
	id := c.Param("id")
	entry, ok := h.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	checkIn, err := time.Parse(daterange.ISOLayout, req.CheckIn)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "check_in must be yyyy-MM-dd"})
		return
	}
	checkOut, err := time.Parse(daterange.ISOLayout, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "check_out must be yyyy-MM-dd"})
		return
	}
	if _, err := entry.session.Select(c.Request.Context(), checkIn, checkOut, req.Guests); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.view(id, entry.propertyID, entry.session))
}

type funnelCheckoutRequest struct {
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
	Note       string `json:"note"`
}

// Checkout hands the committed selection to the booking pipeline. The
// session itself does not track the booking; the response carries it.
func (h *FunnelHandler) Checkout(c *gin.Context) {
	id := c.Param("id")
	entry, ok := h.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req funnelCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	var booked *bookingapp.BeginCheckoutResult
	starter := funnel.StarterFunc(func(ctx context.Context, handoff funnel.Handoff) error {
		cmd := bookingapp.BeginCheckoutCommand{
			CommandID:       uuid.NewString(),
			PropertyID:      string(handoff.PropertyID),
			CheckIn:         handoff.Range.CheckIn.Format(daterange.ISOLayout),
			CheckOut:        handoff.Range.CheckOut.Format(daterange.ISOLayout),
			Guests:          handoff.Guests,
			GuestName:       req.GuestName,
			GuestEmail:      req.GuestEmail,
			GuestPhone:      req.GuestPhone,
			Note:            req.Note,
			IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
		}
		result, err := commands.Dispatch[bookingapp.BeginCheckoutCommand, *bookingapp.BeginCheckoutResult](ctx, h.Commands, cmd)
		if err != nil {
			return err
		}
		booked = result
		return nil
	})
	if err := entry.session.BeginCheckout(c.Request.Context(), starter); err != nil {
		respondError(c, err)
		return
	}
	h.drop(id)
	c.JSON(http.StatusCreated, booked)
}

func (h *FunnelHandler) view(id, propertyID string, session *funnel.Session) sessionView {
	v := sessionView{SessionID: id, PropertyID: propertyID, Phase: session.Phase().String()}
	if res, ok := session.Result(); ok {
		available := res.Available
		v.Available = &available
		v.Message = res.Message
		if res.Quote != nil {
			quote := dto.MapQuote(*res.Quote, res.Breakdown)
			v.Quote = &quote
		}
	}
	return v
}

func (h *FunnelHandler) lookup(id string) (*funnelEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.sessions[id]
	if !ok {
		return nil, false
	}
	now := time.Now()
	if now.After(entry.deadline) {
		delete(h.sessions, id)
		return nil, false
	}
	entry.deadline = now.Add(h.ttl())
	return entry, true
}

func (h *FunnelHandler) drop(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
}

func (h *FunnelHandler) purgeLocked(now time.Time) {
	for id, entry := range h.sessions {
		if now.After(entry.deadline) {
			delete(h.sessions, id)
		}
	}
}

func (h *FunnelHandler) ttl() time.Duration {
	if h.TTL <= 0 {
		return 30 * time.Minute
	}
	return h.TTL
}

var _ FunnelHTTP = (*FunnelHandler)(nil)

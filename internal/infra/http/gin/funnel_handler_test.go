package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	bookingapp "staybook/internal/app/handlers/booking"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	domainavailability "staybook/internal/domain/availability"
	domainpricing "staybook/internal/domain/pricing"
	domainproperties "staybook/internal/domain/properties"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/funnel"
	"staybook/internal/infra/storage/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newFunnelRouter(t *testing.T) (*gin.Engine, memory.Factory) {
	t.Helper()
	factory := memory.NewFactory()
	box := memory.NewOutbox()
	ctx := context.Background()

	property, err := domainproperties.New(domainproperties.CreateParams{
		ID:        "river-loft",
		Slug:      "river-loft",
		Name:      "River Loft",
		MaxGuests: 4,
		Now:       time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, property.Publish(time.Now()))
	require.NoError(t, factory.PropertiesRepo.Save(ctx, property))
	require.NoError(t, factory.RatesRepo.Save(ctx, &domainpricing.RateCard{
		PropertyID:    "river-loft",
		NightlyRate:   money.Must(9500, "EUR"),
		CleaningFee:   money.Must(3000, "EUR"),
		MinStayNights: 2,
	}))

	raw := commands.NewInMemoryBus()
	commands.RegisterHandler(raw, bookingapp.BeginCheckoutCommand{}.Key(), &bookingapp.BeginCheckoutHandler{
		Factory: factory,
		Outbox:  box,
		Encoder: outbox.JSONEventEncoder{},
	})
	bus := middleware.ChainCommands(raw, middleware.Transaction(factory), middleware.OutboxFlush(box))

	handler := &FunnelHandler{
		Commands:      bus,
		Gateway:       funnel.NewGateway(factory),
		MinStayNights: 2,
		Policy:        funnel.FailOpen,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	r := gin.New()
	group := r.Group("/api/v1/funnel/sessions")
	group.POST("", handler.CreateSession)
	group.GET("/:id", handler.GetSession)
	group.POST("/:id/select", handler.Select)
	group.POST("/:id/checkout", handler.Checkout)
	return r, factory
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeSession(t *testing.T, w *httptest.ResponseRecorder) sessionView {
	t.Helper()
	var v sessionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestFunnelSessionLifecycle(t *testing.T) {
	t.Parallel()

	r, _ := newFunnelRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions", gin.H{"property_id": "river-loft"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeSession(t, w)
	require.NotEmpty(t, created.SessionID)
	require.Equal(t, "ready", created.Phase)
	require.Nil(t, created.Available)

	w = doJSON(t, r, http.MethodGet, "/api/v1/funnel/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	checkIn := time.Now().AddDate(0, 0, 5)
	checkOut := checkIn.AddDate(0, 0, 3)
	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/select", gin.H{
		"check_in":  checkIn.Format(daterange.ISOLayout),
		"check_out": checkOut.Format(daterange.ISOLayout),
		"guests":    2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	selected := decodeSession(t, w)
	require.Equal(t, "available", selected.Phase)
	require.NotNil(t, selected.Available)
	require.True(t, *selected.Available)
	require.NotNil(t, selected.Quote)
	require.Equal(t, int64(31500), selected.Quote.TotalMinor)
	require.NotNil(t, selected.Quote.Breakdown)
	require.Equal(t, int64(315), selected.Quote.Breakdown.Total)

	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/checkout", gin.H{
		"guest_name":  "Ada Guest",
		"guest_email": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booked bookingapp.BeginCheckoutResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	require.NotEmpty(t, booked.BookingID)
	require.Equal(t, int64(31500), booked.TotalMinor)

	// Checkout consumes the session.
	w = doJSON(t, r, http.MethodGet, "/api/v1/funnel/sessions/"+created.SessionID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFunnelSelectBelowMinStay(t *testing.T) {
	t.Parallel()

	r, _ := newFunnelRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions", gin.H{"property_id": "river-loft"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeSession(t, w)

	checkIn := time.Now().AddDate(0, 0, 5)
	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/select", gin.H{
		"check_in":  checkIn.Format(daterange.ISOLayout),
		"check_out": checkIn.AddDate(0, 0, 1).Format(daterange.ISOLayout),
		"guests":    2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	selected := decodeSession(t, w)
	require.Equal(t, "unavailable", selected.Phase)
	require.NotNil(t, selected.Available)
	require.False(t, *selected.Available)
	require.Equal(t, "minimum stay is 2 nights", selected.Message)

	// Checkout is refused while no available selection is committed.
	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/checkout", gin.H{
		"guest_name":  "Ada Guest",
		"guest_email": "ada@example.com",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFunnelSelectValidatesDates(t *testing.T) {
	t.Parallel()

	r, _ := newFunnelRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions", gin.H{"property_id": "river-loft"})
	created := decodeSession(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/select", gin.H{
		"check_in":  "10/09/2026",
		"check_out": "2026-09-13",
		"guests":    2,
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFunnelSessionNotFound(t *testing.T) {
	t.Parallel()

	r, _ := newFunnelRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/funnel/sessions/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFunnelSelectBlockedDates(t *testing.T) {
	t.Parallel()

	r, factory := newFunnelRouter(t)
	ctx := context.Background()

	checkIn := daterange.Day(time.Now().AddDate(0, 0, 10))
	blocked, rangeErr := daterange.New(checkIn, checkIn.AddDate(0, 0, 3))
	require.NoError(t, rangeErr)
	cal, err := factory.AvailabilityRepo.Calendar(ctx, "river-loft")
	if err != nil {
		cal = domainavailability.NewCalendar("river-loft")
	}
	require.NoError(t, cal.BlockRange(blocked, "", "maintenance", time.Now()))
	require.NoError(t, factory.AvailabilityRepo.Save(ctx, cal))

	w := doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions", gin.H{"property_id": "river-loft"})
	created := decodeSession(t, w)

	w = doJSON(t, r, http.MethodPost, "/api/v1/funnel/sessions/"+created.SessionID+"/select", gin.H{
		"check_in":  checkIn.Format(daterange.ISOLayout),
		"check_out": checkIn.AddDate(0, 0, 3).Format(daterange.ISOLayout),
		"guests":    2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	selected := decodeSession(t, w)
	require.Equal(t, "unavailable", selected.Phase)
	require.Nil(t, selected.Quote)
}

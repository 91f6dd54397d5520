package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Property       PropertyHTTP
	Availability   AvailabilityHTTP
	Pricing        PricingHTTP
	Booking        BookingHTTP
	Review         ReviewHTTP
	Guest          GuestHTTP
	Funnel         FunnelHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
	}
	if h.Property != nil {
		api.GET("/properties", h.Property.List)
		api.GET("/properties/:id", h.Property.Get)
		api.POST("/properties", h.Property.Create)
		api.PUT("/properties/:id", h.Property.Update)
		api.POST("/properties/:id/publish", h.Property.Publish)
		api.POST("/properties/:id/archive", h.Property.Archive)
		api.POST("/properties/:id/photos", h.Property.UploadPhoto)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/availability", h.Availability.Window)
		api.GET("/properties/:id/availability/check", h.Availability.Check)
		api.GET("/properties/:id/blocks", h.Availability.Blocks)
		api.POST("/properties/:id/blocks", h.Availability.Block)
		api.DELETE("/properties/:id/blocks/:reference", h.Availability.Release)
	}
	if h.Pricing != nil {
		api.GET("/properties/:id/quote", h.Pricing.Quote)
		api.GET("/properties/:id/rates", h.Pricing.Rates)
		api.PUT("/properties/:id/rates", h.Pricing.UpdateRates)
	}
	if h.Booking != nil {
		api.POST("/checkout", h.Booking.Checkout)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Review != nil {
		api.GET("/properties/:id/reviews", h.Review.List)
		api.POST("/reviews", h.Review.Submit)
		api.POST("/reviews/:id/moderate", h.Review.Moderate)
		api.PUT("/reviews/:id", h.Review.Edit)
	}
	if h.Guest != nil {
		api.GET("/guests", h.Guest.List)
		api.GET("/guests/:id", h.Guest.Get)
	}
	if h.Funnel != nil {
		funnelGroup := api.Group("/funnel/sessions")
		funnelGroup.POST("", h.Funnel.CreateSession)
		funnelGroup.GET("/:id", h.Funnel.GetSession)
		funnelGroup.POST("/:id/select", h.Funnel.Select)
		funnelGroup.POST("/:id/checkout", h.Funnel.Checkout)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}

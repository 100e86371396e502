package server

import (
	"context"
	"net/http"

	"bookingpt/internal/auth"
	"bookingpt/internal/availability"
	"bookingpt/internal/booking"
	"bookingpt/internal/config"
	"bookingpt/internal/rates"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers the router mounts.
type Handlers struct {
	Slots    *availability.Handler
	Bookings *booking.Handler
	Rates    *rates.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
	config *config.Config
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	router.Use(corsMiddleware())

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/providers/:providerID/slots", h.Slots.ListSlots)
		protected.POST("/slots/:slotID/book", auth.RequireRole(auth.RoleClient), h.Bookings.BookSlot)
		protected.POST("/bookings/:bookingID/confirm", h.Bookings.ConfirmBooking)
		protected.POST("/bookings/:bookingID/reject", h.Bookings.RejectBooking)
		protected.POST("/bookings/:bookingID/cancel", h.Bookings.CancelBooking)
		protected.POST("/bookings/:bookingID/complete", h.Bookings.CompleteBooking)
		protected.GET("/bookings", h.Bookings.ListMyBookings)
		protected.GET("/bookings/:bookingID", h.Bookings.GetBooking)
	}

	providerMiddleware := auth.RequireRole(auth.RoleProvider)
	provider := router.Group("/provider")
	provider.Use(authMiddleware, providerMiddleware)
	{
		provider.POST("/slots", h.Slots.CreateSlot)
		provider.PUT("/slots/:slotID", h.Slots.UpdateSlot)
		provider.DELETE("/slots/:slotID", h.Slots.DeleteSlot)
		provider.POST("/slots/:slotID/withdraw", h.Slots.WithdrawSlot)
		provider.POST("/slots/:slotID/reopen", h.Slots.ReopenSlot)
		provider.PUT("/rate", h.Rates.SetRate)
		provider.GET("/rate", h.Rates.GetRate)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

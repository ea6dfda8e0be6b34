package routes

import (
	"time"

	"gbtravel/internal/handlers"
	"gbtravel/internal/middleware"
	"gbtravel/internal/utils"
	"gbtravel/pkg/cache"
	"gbtravel/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	User        *handlers.UserHandler
	Destination *handlers.DestinationHandler
	Trip        *handlers.TripHandler
	Booking     *handlers.BookingHandler
	Review      *handlers.ReviewHandler
	Payment     *handlers.PaymentHandler
	Inquiry     *handlers.InquiryHandler
	Live        *handlers.LiveHandler
}

type RateLimitConfig struct {
	Counter cache.Counter
	Max     int
	Window  time.Duration
}

// Setup mounts every route on r. Global middleware is applied by the caller.
func Setup(r *gin.Engine, h *Handlers, auth middleware.Authenticator, limit RateLimitConfig, log *logger.Logger) {
	r.GET("/health", h.Health.Health)

	// The provider signs the raw body and retries on its own schedule, so the
	// webhook is kept out of the rate limiter.
	r.POST("/api/payments/webhook", h.Payment.HandleWebhook)

	api := r.Group("/api", middleware.RateLimit(limit.Counter, limit.Max, limit.Window, log))
	api.GET("", h.Health.Index)

	authRequired := middleware.AuthRequired(auth)
	adminOnly := middleware.AdminRequired()
	optionalAuth := middleware.OptionalAuth(auth)

	SetupAuthRoutes(api, h.Auth, authRequired)
	SetupUserRoutes(api, h.User, authRequired, adminOnly)
	SetupDestinationRoutes(api, h.Destination, authRequired, adminOnly)
	SetupTripRoutes(api, h.Trip, authRequired, adminOnly)
	if h.Live != nil {
		api.GET("/trips/:id/live", h.Live.TripAvailability)
	}
	SetupBookingRoutes(api, h.Booking, authRequired, adminOnly, optionalAuth)
	SetupReviewRoutes(api, h.Review, authRequired, adminOnly)
	SetupPaymentRoutes(api, h.Payment, authRequired, adminOnly)
	SetupInquiryRoutes(api, h.Inquiry, authRequired, adminOnly)

	r.NoRoute(utils.NotFoundRouteResponse)
}

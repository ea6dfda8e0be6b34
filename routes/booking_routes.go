package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupBookingRoutes(r *gin.RouterGroup, bookingHandler *handlers.BookingHandler, authRequired, adminOnly, optionalAuth gin.HandlerFunc) {
	bookings := r.Group("/bookings")

	bookings.GET("/confirmation/:code", optionalAuth, bookingHandler.GetByConfirmationCode)

	admin := bookings.Group("/admin", authRequired, adminOnly)
	{
		admin.GET("/all", bookingHandler.ListBookings)
		admin.GET("/stats", bookingHandler.GetStats)
	}

	protected := bookings.Group("", authRequired)
	{
		protected.POST("", bookingHandler.CreateBooking)
		protected.GET("", bookingHandler.GetMyBookings)
		protected.GET("/:id", bookingHandler.GetBooking)
		protected.GET("/:id/ticket", bookingHandler.GetTicket)
		protected.PUT("/:id/cancel", bookingHandler.CancelBooking)
		protected.PUT("/:id/status", adminOnly, bookingHandler.UpdateStatus)
	}
}

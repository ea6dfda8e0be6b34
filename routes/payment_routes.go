package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPaymentRoutes mounts the authenticated payment routes. The webhook is
// mounted separately by Setup.
func SetupPaymentRoutes(r *gin.RouterGroup, paymentHandler *handlers.PaymentHandler, authRequired, adminOnly gin.HandlerFunc) {
	payments := r.Group("/payments", authRequired)

	admin := payments.Group("/admin", adminOnly)
	{
		admin.GET("/all", paymentHandler.ListPayments)
		admin.GET("/stats", paymentHandler.GetStats)
	}

	{
		payments.POST("/create-checkout", paymentHandler.CreateCheckout)
		payments.GET("/verify/:sessionId", paymentHandler.VerifyPayment)
		payments.GET("/history", paymentHandler.GetHistory)
		payments.GET("/:id", paymentHandler.GetPayment)
	}
}

package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupReviewRoutes(r *gin.RouterGroup, reviewHandler *handlers.ReviewHandler, authRequired, adminOnly gin.HandlerFunc) {
	reviews := r.Group("/reviews")

	admin := reviews.Group("", authRequired, adminOnly)
	{
		admin.GET("/admin/all", reviewHandler.ListReviews)
		admin.PUT("/:id/moderate", reviewHandler.ModerateReview)
	}

	{
		reviews.GET("/trip/:tripId", reviewHandler.GetTripReviews)
		reviews.GET("/user/:userId", reviewHandler.GetUserReviews)
		reviews.GET("/:id", reviewHandler.GetReview)
	}

	protected := reviews.Group("", authRequired)
	{
		protected.POST("", reviewHandler.CreateReview)
		protected.PUT("/:id", reviewHandler.UpdateReview)
		protected.DELETE("/:id", reviewHandler.DeleteReview)
		protected.POST("/:id/helpful", reviewHandler.VoteHelpful)
	}
}

package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, authRequired, adminOnly gin.HandlerFunc) {
	users := r.Group("/users", authRequired)
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.DELETE("/profile", userHandler.DeleteAccount)
		users.GET("/bookings", userHandler.GetBookings)

		users.POST("/favorites/:destinationId", userHandler.AddFavorite)
		users.DELETE("/favorites/:destinationId", userHandler.RemoveFavorite)
	}

	admin := users.Group("", adminOnly)
	{
		admin.GET("", userHandler.ListUsers)
		admin.GET("/:id", userHandler.GetUser)
		admin.PUT("/:id/role", userHandler.UpdateRole)
		admin.PUT("/:id/status", userHandler.UpdateStatus)
	}
}

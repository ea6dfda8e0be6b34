package routes

import (
	"gbtravel/internal/handlers"

	"github.com/gin-gonic/gin"
)

func SetupDestinationRoutes(r *gin.RouterGroup, destinationHandler *handlers.DestinationHandler, authRequired, adminOnly gin.HandlerFunc) {
	destinations := r.Group("/destinations")
	{
		destinations.GET("/search", destinationHandler.SearchDestinations)
		destinations.GET("/featured", destinationHandler.GetFeatured)
		destinations.GET("/popular", destinationHandler.GetPopular)
		destinations.GET("/countries", destinationHandler.GetCountries)
		destinations.GET("", destinationHandler.ListDestinations)
		destinations.GET("/:id", destinationHandler.GetDestination)
	}

	admin := destinations.Group("", authRequired, adminOnly)
	{
		admin.POST("", destinationHandler.CreateDestination)
		admin.PUT("/:id", destinationHandler.UpdateDestination)
		admin.DELETE("/:id", destinationHandler.DeleteDestination)
		admin.POST("/:id/images", destinationHandler.UploadImage)
	}
}

func SetupTripRoutes(r *gin.RouterGroup, tripHandler *handlers.TripHandler, authRequired, adminOnly gin.HandlerFunc) {
	trips := r.Group("/trips")
	{
		trips.GET("/search", tripHandler.SearchTrips)
		trips.GET("/featured", tripHandler.GetFeaturedTrips)
		trips.GET("/upcoming", tripHandler.GetUpcomingTrips)
		trips.GET("/destination/:destinationId", tripHandler.GetTripsByDestination)
		trips.GET("/:id/availability", tripHandler.GetAvailability)
		trips.GET("", tripHandler.ListTrips)
		trips.GET("/:id", tripHandler.GetTrip)
	}

	admin := trips.Group("", authRequired, adminOnly)
	{
		admin.POST("", tripHandler.CreateTrip)
		admin.PUT("/:id", tripHandler.UpdateTrip)
		admin.DELETE("/:id", tripHandler.DeleteTrip)
		admin.POST("/:id/images", tripHandler.UploadImage)
	}
}

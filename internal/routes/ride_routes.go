package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Shanmukha18/ViOLA/internal/controllers"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
)

func RideRoutes(r *gin.Engine) {
	rides := r.Group("/api/rides")
	{
		rides.GET("", controllers.GetAllRides)
		rides.GET("/search", controllers.SearchRides)
		rides.GET("/my-rides", middleware.RequireAuth(), controllers.GetMyRides)
		rides.GET("/:rideId", controllers.GetRideByID)
		rides.POST("", middleware.RequireAuth(), controllers.CreateRide)
		rides.PUT("/:rideId", middleware.RequireAuth(), controllers.UpdateRide)
		rides.DELETE("/:rideId", middleware.RequireAuth(), controllers.DeactivateRide)
		rides.DELETE("/:rideId/permanent", middleware.RequireAuth(), controllers.DeleteRidePermanently)
	}
}

package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Shanmukha18/ViOLA/internal/controllers"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/google", controllers.AuthenticateWithGoogle)
		auth.GET("/me", middleware.RequireAuth(), controllers.GetCurrentUser)
		auth.PUT("/profile", middleware.RequireAuth(), controllers.UpdateProfile)
	}
}

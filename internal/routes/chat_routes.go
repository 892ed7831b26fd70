package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Shanmukha18/ViOLA/internal/controllers"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
)

func ChatRoutes(r *gin.Engine) {
	chat := r.Group("/api/chat")
	chat.Use(middleware.RequireAuth())
	{
		chat.GET("/ride/:rideId", controllers.GetRideChatHistory)
		chat.GET("/conversations", controllers.GetConversations)
		chat.GET("/unread", controllers.GetUnreadMessages)
		chat.GET("/unread-count", controllers.GetUnreadCount)
		chat.POST("/mark-read/:rideId", controllers.MarkRideAsRead)
	}
}

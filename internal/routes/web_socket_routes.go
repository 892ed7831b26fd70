package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Shanmukha18/ViOLA/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine) {
	// Token checking happens inside the handler: the handshake is allowed to
	// proceed without one.
	r.GET("/ws", controllers.HandleChatWebSocket)
}

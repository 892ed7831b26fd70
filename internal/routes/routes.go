package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/controllers"
)

func SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Request logging middleware
	r.Use(ginlog.SetLogger())

	// Broker + message router (needs the DB handle)
	controllers.InitChat(config.GetDB())

	AuthRoutes(r)
	RideRoutes(r)
	ChatRoutes(r)
	WebSocketRoutes(r)

	return r
}

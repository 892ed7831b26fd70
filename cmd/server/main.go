package main

import (
	"log"
	"net/http"
	"os"

	"github.com/Shanmukha18/ViOLA/internal/config"
	"github.com/Shanmukha18/ViOLA/internal/logger"
	"github.com/Shanmukha18/ViOLA/internal/middleware"
	"github.com/Shanmukha18/ViOLA/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running at :" + port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}

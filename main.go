package main

import (
	"log"
	"townsquare-api/config"
	"townsquare-api/database"
	"townsquare-api/events"
	"townsquare-api/middleware"
	"townsquare-api/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Seed database with test data (optional - for development)
	if err := database.SeedData(db); err != nil {
		log.Printf("Warning: Failed to seed database: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Port == "8080" { // Development
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()

	// Setup CORS middleware
	router.Use(routes.SetupCORS())

	// Request logging middleware
	router.Use(middleware.RequestLogger())

	// Recovery middleware
	router.Use(gin.Recovery())

	// Security headers, error normalization and per-IP rate limiting
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RateLimit(120, 30))

	// One bus instance shared by producers and consumers
	bus := events.NewBus()

	// Setup routes
	notificationWriter := routes.SetupRoutes(router, db, cfg, bus)
	defer notificationWriter.Close()

	// Start server
	log.Printf("Starting TownSquare API server on port %s", cfg.Port)
	log.Printf("Health check available at: http://localhost:%s/ping", cfg.Port)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

package routes

import (
	"townsquare-api/config"
	"townsquare-api/controllers"
	"townsquare-api/events"
	"townsquare-api/middleware"
	"townsquare-api/repositories"
	"townsquare-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes wires repositories, services and controllers around one
// shared event bus and registers the HTTP surface. The returned writer
// owns bus subscriptions and must be closed on shutdown.
func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, bus *events.Bus) *services.NotificationWriter {
	// Stores
	relationshipStore := repositories.NewRelationshipRepository(db)
	contentStore := repositories.NewContentRepository(db)

	// Services
	relationshipService := services.NewRelationshipService(relationshipStore, bus)
	activityAggregator := services.NewActivityAggregator(relationshipService, contentStore)
	emailService := services.NewEmailService(cfg)
	notificationWriter := services.NewNotificationWriter(db, relationshipStore, emailService, bus)

	// Controllers
	friendController := controllers.NewFriendController(relationshipService)
	activityController := controllers.NewActivityController(activityAggregator)
	postController := controllers.NewPostController(db, bus)
	listingController := controllers.NewListingController(db)
	notificationController := controllers.NewNotificationController(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// Friend and relationship routes
		friends := protected.Group("/friends")
		{
			friends.GET("/", friendController.GetFriends)
			friends.POST("/request/:user_id", friendController.SendFriendRequest)
			friends.POST("/accept/:request_id", friendController.AcceptFriendRequest)
			friends.POST("/reject/:request_id", friendController.RejectFriendRequest)
			friends.DELETE("/:user_id", friendController.RemoveFriend)
			friends.GET("/requests", friendController.GetPendingRequests)
			friends.GET("/status/:user_id", friendController.GetRelationshipStatus)
		}

		// Block routes
		blocks := protected.Group("/blocks")
		{
			blocks.GET("/", friendController.GetBlockedUsers)
			blocks.POST("/:user_id", friendController.BlockUser)
			blocks.DELETE("/:user_id", friendController.UnblockUser)
		}

		// Activity overview (reconciliation pull for UI surfaces)
		activity := protected.Group("/activity")
		{
			activity.GET("/overview", activityController.GetOverview)
		}

		// Forum post routes
		posts := protected.Group("/posts")
		{
			posts.GET("/", postController.GetPosts)
			posts.POST("/", postController.CreatePost)
			posts.DELETE("/:id", postController.DeletePost)
			posts.POST("/:id/like", postController.LikePost)
			posts.POST("/:id/replies", postController.CreateReply)
		}

		// Listing routes
		listings := protected.Group("/listings")
		{
			listings.GET("/", listingController.GetListings)
			listings.POST("/", listingController.CreateListing)
			listings.DELETE("/:id", listingController.DeleteListing)
		}

		// Notification routes
		notifications := protected.Group("/notifications")
		{
			notifications.GET("/", notificationController.GetNotifications)
			notifications.PUT("/:id/read", notificationController.MarkAsRead)
			notifications.GET("/stats", notificationController.GetStats)
		}
	}

	return notificationWriter
}

// SetupCORS configures cross-origin headers for the web client.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

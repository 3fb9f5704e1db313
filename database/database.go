package database

import (
	"fmt"
	"townsquare-api/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.BlockEdge{},
		&models.Post{},
		&models.PostLike{},
		&models.Reply{},
		&models.Listing{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	if err := addDatabaseConstraints(db); err != nil {
		return fmt.Errorf("failed to add database constraints: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Request inbox queries
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_friend_requests_receiver_status ON friend_requests(receiver_id, status, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for friend_requests: %v\n", err)
	}

	// Friend list queries from either side of the canonical pair
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_friendships_user2 ON friendships(user2_id, user1_id)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for friendships: %v\n", err)
	}

	// Block checks in either direction
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_block_edges_blocked_blocker ON block_edges(blocked_id, blocker_id)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for block_edges: %v\n", err)
	}

	// Notification feed
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_target_created ON notifications(target_user_id, created_at DESC)").Error; err != nil {
		fmt.Printf("Warning: Could not create index for notifications: %v\n", err)
	}

	return nil
}

func addDatabaseConstraints(db *gorm.DB) error {
	// One friendship row per canonical pair
	if err := db.Exec("ALTER TABLE friendships ADD CONSTRAINT uk_friendships_pair UNIQUE (user1_id, user2_id)").Error; err != nil {
		// Ignore error if constraint already exists
		fmt.Printf("Warning: Could not add unique constraint for friendships: %v\n", err)
	}

	// One block edge per direction
	if err := db.Exec("ALTER TABLE block_edges ADD CONSTRAINT uk_block_edges_pair UNIQUE (blocker_id, blocked_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for block_edges: %v\n", err)
	}

	// One like per user per post
	if err := db.Exec("ALTER TABLE post_likes ADD CONSTRAINT uk_post_likes_post_user UNIQUE (post_id, user_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add unique constraint for post_likes: %v\n", err)
	}

	// No self-friendships or self-blocks
	if err := db.Exec("ALTER TABLE friendships ADD CONSTRAINT ck_friendships_no_self CHECK (user1_id != user2_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for friendships: %v\n", err)
	}
	if err := db.Exec("ALTER TABLE block_edges ADD CONSTRAINT ck_block_edges_no_self CHECK (blocker_id != blocked_id)").Error; err != nil {
		fmt.Printf("Warning: Could not add check constraint for block_edges: %v\n", err)
	}

	return nil
}

// SeedData populates the database with initial data for development/testing
func SeedData(db *gorm.DB) error {
	var userCount int64
	db.Model(&models.User{}).Count(&userCount)

	if userCount > 0 {
		fmt.Println("Database already has data, skipping seed")
		return nil
	}

	password, err := bcrypt.GenerateFromPassword([]byte("devpassword"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	testUsers := []models.User{
		{
			ID:            "user-1",
			Name:          "John Doe",
			Handle:        "john_doe",
			Email:         "john@example.com",
			Password:      string(password),
			EmailVerified: true,
		},
		{
			ID:            "user-2",
			Name:          "Jane Smith",
			Handle:        "jane_smith",
			Email:         "jane@example.com",
			Password:      string(password),
			EmailVerified: true,
		},
	}

	for _, user := range testUsers {
		if err := db.Create(&user).Error; err != nil {
			fmt.Printf("Warning: Could not create test user %s: %v\n", user.Handle, err)
		}
	}

	fmt.Println("Database seeded with test data")
	return nil
}

package repositories

import (
	"context"
	"townsquare-api/models"

	"gorm.io/gorm"
)

// ContentStore exposes the read-only authorship counts the activity
// aggregator pulls from the portal's content tables.
type ContentStore interface {
	CountPostsByAuthor(ctx context.Context, userID string) (int64, error)
	CountRepliesByAuthor(ctx context.Context, userID string) (int64, error)
	CountListingsByCategory(ctx context.Context, userID string, category models.ListingCategory) (int64, error)
	CountLikesReceived(ctx context.Context, userID string) (int64, error)
}

// ContentRepository is the gorm-backed ContentStore.
type ContentRepository struct {
	db *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

func (r *ContentRepository) CountPostsByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count posts", err)
	}
	return count, nil
}

func (r *ContentRepository) CountRepliesByAuthor(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reply{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count replies", err)
	}
	return count, nil
}

func (r *ContentRepository) CountListingsByCategory(ctx context.Context, userID string, category models.ListingCategory) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("user_id = ? AND category = ? AND is_active = ?", userID, category, true).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count listings", err)
	}
	return count, nil
}

func (r *ContentRepository) CountLikesReceived(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PostLike{}).
		Joins("JOIN posts ON posts.id = post_likes.post_id").
		Where("posts.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, storeErr("count likes received", err)
	}
	return count, nil
}

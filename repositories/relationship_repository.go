package repositories

import (
	"context"
	"errors"
	"fmt"
	"townsquare-api/models"

	"gorm.io/gorm"
)

// RelationshipStore is the record-level contract the relationship service
// writes through. No multi-record transaction is assumed; composite
// invariants are sequenced by the service, not here.
type RelationshipStore interface {
	CreateRequest(ctx context.Context, request *models.FriendRequest) error
	GetRequest(ctx context.Context, requestID string) (*models.FriendRequest, error)
	// UpdateRequestStatus transitions a request from one status to another
	// and reports ErrNotFound when the request is missing or no longer in
	// the expected status, so concurrent callers observe exactly one win.
	UpdateRequestStatus(ctx context.Context, requestID string, from, to models.FriendRequestStatus) error
	FindPendingRequestBetween(ctx context.Context, userA, userB string) (*models.FriendRequest, error)
	ListIncomingPendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error)

	CreateFriendship(ctx context.Context, userA, userB string) error
	DeleteFriendship(ctx context.Context, userA, userB string) error
	FriendshipExists(ctx context.Context, userA, userB string) (bool, error)
	ListFriendships(ctx context.Context, userID string) ([]models.Friendship, error)

	CreateBlock(ctx context.Context, blocker, blocked string) error
	DeleteBlock(ctx context.Context, blocker, blocked string) error
	BlockExists(ctx context.Context, blocker, blocked string) (bool, error)
	BlockExistsBetween(ctx context.Context, userA, userB string) (bool, error)
	ListBlocks(ctx context.Context, blocker string) ([]models.BlockEdge, error)

	GetUsersByID(ctx context.Context, ids []string) ([]models.User, error)
}

// RelationshipRepository is the gorm-backed RelationshipStore.
type RelationshipRepository struct {
	db *gorm.DB
}

func NewRelationshipRepository(db *gorm.DB) *RelationshipRepository {
	return &RelationshipRepository{db: db}
}

func (r *RelationshipRepository) CreateRequest(ctx context.Context, request *models.FriendRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return storeErr("create friend request", err)
	}
	return nil
}

func (r *RelationshipRepository) GetRequest(ctx context.Context, requestID string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("get friend request", err)
	}
	return &request, nil
}

func (r *RelationshipRepository) UpdateRequestStatus(ctx context.Context, requestID string, from, to models.FriendRequestStatus) error {
	result := r.db.WithContext(ctx).Model(&models.FriendRequest{}).
		Where("id = ? AND status = ?", requestID, from).
		Update("status", to)
	if result.Error != nil {
		return storeErr("update friend request status", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RelationshipRepository) FindPendingRequestBetween(ctx context.Context, userA, userB string) (*models.FriendRequest, error) {
	var request models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)) AND status = ?",
			userA, userB, userB, userA, models.FriendRequestStatusPending).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find pending request", err)
	}
	return &request, nil
}

func (r *RelationshipRepository) ListIncomingPendingRequests(ctx context.Context, userID string) ([]models.FriendRequest, error) {
	var requests []models.FriendRequest
	err := r.db.WithContext(ctx).Preload("Sender").
		Where("receiver_id = ? AND status = ?", userID, models.FriendRequestStatusPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, storeErr("list incoming requests", err)
	}
	return requests, nil
}

func (r *RelationshipRepository) CreateFriendship(ctx context.Context, userA, userB string) error {
	user1, user2 := models.CanonicalPair(userA, userB)
	friendship := models.Friendship{User1ID: user1, User2ID: user2}
	if err := r.db.WithContext(ctx).Create(&friendship).Error; err != nil {
		return storeErr("create friendship", err)
	}
	return nil
}

func (r *RelationshipRepository) DeleteFriendship(ctx context.Context, userA, userB string) error {
	user1, user2 := models.CanonicalPair(userA, userB)
	result := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Delete(&models.Friendship{})
	if result.Error != nil {
		return storeErr("delete friendship", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RelationshipRepository) FriendshipExists(ctx context.Context, userA, userB string) (bool, error) {
	user1, user2 := models.CanonicalPair(userA, userB)
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friendship{}).
		Where("user1_id = ? AND user2_id = ?", user1, user2).
		Count(&count).Error
	if err != nil {
		return false, storeErr("check friendship", err)
	}
	return count > 0, nil
}

func (r *RelationshipRepository) ListFriendships(ctx context.Context, userID string) ([]models.Friendship, error) {
	var friendships []models.Friendship
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&friendships).Error
	if err != nil {
		return nil, storeErr("list friendships", err)
	}
	return friendships, nil
}

func (r *RelationshipRepository) CreateBlock(ctx context.Context, blocker, blocked string) error {
	block := models.BlockEdge{BlockerID: blocker, BlockedID: blocked}
	if err := r.db.WithContext(ctx).Create(&block).Error; err != nil {
		return storeErr("create block", err)
	}
	return nil
}

func (r *RelationshipRepository) DeleteBlock(ctx context.Context, blocker, blocked string) error {
	result := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blocker, blocked).
		Delete(&models.BlockEdge{})
	if result.Error != nil {
		return storeErr("delete block", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RelationshipRepository) BlockExists(ctx context.Context, blocker, blocked string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlockEdge{}).
		Where("blocker_id = ? AND blocked_id = ?", blocker, blocked).
		Count(&count).Error
	if err != nil {
		return false, storeErr("check block", err)
	}
	return count > 0, nil
}

func (r *RelationshipRepository) BlockExistsBetween(ctx context.Context, userA, userB string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlockEdge{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	if err != nil {
		return false, storeErr("check block between", err)
	}
	return count > 0, nil
}

func (r *RelationshipRepository) ListBlocks(ctx context.Context, blocker string) ([]models.BlockEdge, error) {
	var blocks []models.BlockEdge
	err := r.db.WithContext(ctx).Preload("Blocked").
		Where("blocker_id = ?", blocker).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, storeErr("list blocks", err)
	}
	return blocks, nil
}

func (r *RelationshipRepository) GetUsersByID(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	if err != nil {
		return nil, storeErr("get users", err)
	}
	return users, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

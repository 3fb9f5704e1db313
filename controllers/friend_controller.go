package controllers

import (
	"errors"
	"net/http"
	"townsquare-api/services"

	"github.com/gin-gonic/gin"
)

type FriendController struct {
	relationships *services.RelationshipService
}

func NewFriendController(relationships *services.RelationshipService) *FriendController {
	return &FriendController{relationships: relationships}
}

func (fc *FriendController) SendFriendRequest(c *gin.Context) {
	senderID := c.GetString("user_id")
	receiverID := c.Param("user_id")

	request, err := fc.relationships.SendFriendRequest(c.Request.Context(), senderID, receiverID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Friend request sent successfully",
		"request": request,
	})
}

func (fc *FriendController) AcceptFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID := c.Param("request_id")

	if err := fc.relationships.AcceptFriendRequest(c.Request.Context(), userID, requestID); err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted successfully"})
}

func (fc *FriendController) RejectFriendRequest(c *gin.Context) {
	userID := c.GetString("user_id")
	requestID := c.Param("request_id")

	if err := fc.relationships.RejectFriendRequest(c.Request.Context(), userID, requestID); err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request rejected successfully"})
}

func (fc *FriendController) RemoveFriend(c *gin.Context) {
	userID := c.GetString("user_id")
	friendID := c.Param("user_id")

	if err := fc.relationships.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend removed successfully"})
}

func (fc *FriendController) BlockUser(c *gin.Context) {
	blockerID := c.GetString("user_id")
	blockedID := c.Param("user_id")

	if err := fc.relationships.BlockUser(c.Request.Context(), blockerID, blockedID); err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User blocked successfully"})
}

func (fc *FriendController) UnblockUser(c *gin.Context) {
	blockerID := c.GetString("user_id")
	blockedID := c.Param("user_id")

	if err := fc.relationships.UnblockUser(c.Request.Context(), blockerID, blockedID); err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully"})
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	userID := c.GetString("user_id")

	friends, err := fc.relationships.GetFriends(c.Request.Context(), userID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (fc *FriendController) GetPendingRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	requests, err := fc.relationships.GetFriendRequests(c.Request.Context(), userID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

func (fc *FriendController) GetBlockedUsers(c *gin.Context) {
	userID := c.GetString("user_id")

	blocked, err := fc.relationships.GetBlockedUsers(c.Request.Context(), userID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked_users": blocked})
}

// GetRelationshipStatus reports the pair state from the caller's side,
// for profile-page rendering.
func (fc *FriendController) GetRelationshipStatus(c *gin.Context) {
	userID := c.GetString("user_id")
	targetUserID := c.Param("user_id")

	if userID == targetUserID {
		c.JSON(http.StatusOK, gin.H{"status": "self"})
		return
	}

	ctx := c.Request.Context()

	blocking, err := fc.relationships.HasBlocked(ctx, userID, targetUserID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}
	if blocking {
		c.JSON(http.StatusOK, gin.H{"status": "blocked"})
		return
	}

	blockedBy, err := fc.relationships.HasBlocked(ctx, targetUserID, userID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}
	if blockedBy {
		c.JSON(http.StatusOK, gin.H{"status": "blocked_by"})
		return
	}

	friends, err := fc.relationships.AreFriends(ctx, userID, targetUserID)
	if err != nil {
		respondRelationshipError(c, err)
		return
	}
	if friends {
		c.JSON(http.StatusOK, gin.H{"status": "friends"})
		return
	}

	request, err := fc.relationships.PendingRequestBetween(ctx, userID, targetUserID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		respondRelationshipError(c, err)
		return
	}
	if request != nil {
		status := "request_received"
		if request.SenderID == userID {
			status = "request_sent"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     status,
			"request_id": request.ID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "none"})
}

func respondRelationshipError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
	case errors.Is(err, services.ErrAlreadyBlocked),
		errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

package controllers

import (
	"net/http"
	"strconv"
	"townsquare-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationController serves the persisted notification feed. Rows are
// written by the services.NotificationWriter bus consumer, not here.
type NotificationController struct {
	db *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// GetNotifications gets paginated notifications for the current user
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int64
	nc.db.Model(&models.Notification{}).Where("target_user_id = ?", userID).Count(&total)

	var notifications []models.Notification
	if err := nc.db.Preload("ActorUser").
		Where("target_user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	for i := range notifications {
		notifications[i].ActorUser.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"page":          page,
		"limit":         limit,
		"total":         total,
	})
}

// MarkAsRead marks a single notification as read
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	result := nc.db.Model(&models.Notification{}).
		Where("id = ? AND target_user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// GetStats returns unread/total counts for the notification badge
func (nc *NotificationController) GetStats(c *gin.Context) {
	userID := c.GetString("user_id")

	var stats models.NotificationStats
	var unread, total int64
	nc.db.Model(&models.Notification{}).
		Where("target_user_id = ? AND is_read = ?", userID, false).Count(&unread)
	nc.db.Model(&models.Notification{}).
		Where("target_user_id = ?", userID).Count(&total)

	stats.UnreadCount = int(unread)
	stats.TotalCount = int(total)

	c.JSON(http.StatusOK, stats)
}

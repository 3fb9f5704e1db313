package models

import "time"

type NotificationType string

const (
	NotificationTypeRequestAccepted NotificationType = "request_accepted"
	NotificationTypeRequestRejected NotificationType = "request_rejected"
)

type Notification struct {
	ID           string           `json:"id" gorm:"primaryKey;size:191"`
	Type         NotificationType `json:"type" gorm:"not null;size:50"`
	ActorUserID  string           `json:"actor_user_id" gorm:"not null;size:191"`  // Who performed the action
	TargetUserID string           `json:"target_user_id" gorm:"not null;size:191"` // Who receives the notification
	IsRead       bool             `json:"is_read" gorm:"default:false"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	ActorUser  User `json:"actor_user" gorm:"foreignKey:ActorUserID"`
	TargetUser User `json:"target_user" gorm:"foreignKey:TargetUserID"`
}

// NotificationStats represents notification statistics
type NotificationStats struct {
	UnreadCount int `json:"unread_count"`
	TotalCount  int `json:"total_count"`
}

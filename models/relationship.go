package models

import "time"

type FriendRequestStatus string

const (
	FriendRequestStatusPending  FriendRequestStatus = "pending"
	FriendRequestStatusAccepted FriendRequestStatus = "accepted"
	FriendRequestStatusRejected FriendRequestStatus = "rejected"
)

type FriendRequest struct {
	ID         string              `json:"id" gorm:"primaryKey;size:191"`
	SenderID   string              `json:"sender_id" gorm:"not null;size:191;index"`
	ReceiverID string              `json:"receiver_id" gorm:"not null;size:191;index"`
	Status     FriendRequestStatus `json:"status" gorm:"not null;default:'pending';size:20"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`

	Sender   User `json:"sender" gorm:"foreignKey:SenderID"`
	Receiver User `json:"receiver" gorm:"foreignKey:ReceiverID"`
}

// Friendship rows store the pair in canonical order (User1ID < User2ID)
// so one row answers queries from either side.
type Friendship struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	User1ID   string    `json:"user1_id" gorm:"not null;size:191;index"`
	User2ID   string    `json:"user2_id" gorm:"not null;size:191;index"`
	CreatedAt time.Time `json:"created_at"`

	User1 User `json:"user1" gorm:"foreignKey:User1ID"`
	User2 User `json:"user2" gorm:"foreignKey:User2ID"`
}

// BlockEdge is directed: the blocker controls it, and a reverse-direction
// block may exist at the same time.
type BlockEdge struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlockerID string    `json:"blocker_id" gorm:"not null;size:191;index"`
	BlockedID string    `json:"blocked_id" gorm:"not null;size:191;index"`
	CreatedAt time.Time `json:"created_at"`

	Blocker User `json:"blocker" gorm:"foreignKey:BlockerID"`
	Blocked User `json:"blocked" gorm:"foreignKey:BlockedID"`
}

// CanonicalPair orders two user IDs the way Friendship rows store them.
func CanonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

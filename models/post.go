package models

import (
	"time"
)

type Post struct {
	ID           string    `json:"id" gorm:"primaryKey;size:191"`
	UserID       string    `json:"user_id" gorm:"not null;size:191;index"`
	Title        string    `json:"title" gorm:"not null;size:255"`
	Body         string    `json:"body" gorm:"type:text"`
	LikesCount   int       `json:"likes_count" gorm:"default:0"`
	RepliesCount int       `json:"replies_count" gorm:"default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User    User       `json:"user" gorm:"foreignKey:UserID"`
	Likes   []PostLike `json:"likes" gorm:"foreignKey:PostID"`
	Replies []Reply    `json:"replies" gorm:"foreignKey:PostID"`
}

type PostLike struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;index"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index"`
	CreatedAt time.Time `json:"created_at"`

	Post Post `json:"post" gorm:"foreignKey:PostID"`
	User User `json:"user" gorm:"foreignKey:UserID"`
}

type Reply struct {
	ID        string    `json:"id" gorm:"primaryKey;size:191"`
	PostID    string    `json:"post_id" gorm:"not null;size:191;index"`
	UserID    string    `json:"user_id" gorm:"not null;size:191;index"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Post Post `json:"post" gorm:"foreignKey:PostID"`
	User User `json:"user" gorm:"foreignKey:UserID"`
}

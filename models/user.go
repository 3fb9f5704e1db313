package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string    `json:"id" gorm:"primaryKey;size:191"`
	Name          string    `json:"name" gorm:"not null;size:255"`
	Handle        string    `json:"handle" gorm:"uniqueIndex;not null;size:50"`
	Email         string    `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password      string    `json:"-" gorm:"not null;size:255"`
	EmailVerified bool      `json:"email_verified" gorm:"default:false"`
	Avatar        *string   `json:"avatar" gorm:"size:500"`
	Bio           string    `json:"bio" gorm:"size:500"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Posts    []Post    `json:"posts" gorm:"foreignKey:UserID"`
	Listings []Listing `json:"listings" gorm:"foreignKey:UserID"`
}

// GenerateHandleFromName creates a handle from the user's display name
func GenerateHandleFromName(name string) string {
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "_"))
	handle = strings.ReplaceAll(handle, ".", "")
	handle = strings.ReplaceAll(handle, "-", "_")
	return handle
}

// PublicProfile is the joined profile shape returned by friend and
// request listings (never includes credentials).
type PublicProfile struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Handle string  `json:"handle"`
	Avatar *string `json:"avatar"`
}

func (u User) PublicProfile() PublicProfile {
	return PublicProfile{
		ID:     u.ID,
		Name:   u.Name,
		Handle: u.Handle,
		Avatar: u.Avatar,
	}
}

package models

import "time"

type ListingCategory string

const (
	ListingCategoryJob     ListingCategory = "job"
	ListingCategoryHousing ListingCategory = "housing"
	ListingCategoryService ListingCategory = "service"
)

type Listing struct {
	ID          string          `json:"id" gorm:"primaryKey;size:191"`
	UserID      string          `json:"user_id" gorm:"not null;size:191;index"`
	Category    ListingCategory `json:"category" gorm:"not null;size:20;index"`
	Title       string          `json:"title" gorm:"not null;size:255"`
	Description string          `json:"description" gorm:"type:text"`
	Location    string          `json:"location" gorm:"size:255"`
	Price       *float64        `json:"price"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

package controllers

import (
	"net/http"
	"strconv"
	"townsquare-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ListingController struct {
	db *gorm.DB
}

func NewListingController(db *gorm.DB) *ListingController {
	return &ListingController{db: db}
}

type CreateListingRequest struct {
	Category    string   `json:"category" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Price       *float64 `json:"price"`
}

func (lc *ListingController) CreateListing(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.ListingCategory(req.Category)
	switch category {
	case models.ListingCategoryJob, models.ListingCategoryHousing, models.ListingCategoryService:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing category"})
		return
	}

	listing := models.Listing{
		ID:          uuid.New().String(),
		UserID:      userID,
		Category:    category,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
		IsActive:    true,
	}

	if err := lc.db.Create(&listing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

func (lc *ListingController) GetListings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	query := lc.db.Preload("User").Where("is_active = ?", true)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var listings []models.Listing
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&listings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	for i := range listings {
		listings[i].User.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

func (lc *ListingController) DeleteListing(c *gin.Context) {
	userID := c.GetString("user_id")
	listingID := c.Param("id")

	result := lc.db.Where("id = ? AND user_id = ?", listingID, userID).
		Delete(&models.Listing{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted successfully"})
}

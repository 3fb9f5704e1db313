package controllers

import (
	"net/http"
	"strconv"
	"townsquare-api/events"
	"townsquare-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostController struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewPostController(db *gorm.DB, bus *events.Bus) *PostController {
	return &PostController{db: db, bus: bus}
}

type CreatePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body"`
}

func (pc *PostController) CreatePost(c *gin.Context) {
	userID := c.GetString("user_id")

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		ID:     uuid.New().String(),
		UserID: userID,
		Title:  req.Title,
		Body:   req.Body,
	}

	if err := pc.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	pc.bus.Publish(events.TopicPostAdded, events.PostAdded{
		PostID:   post.ID,
		AuthorID: userID,
	})

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	if err := pc.db.First(&post, "id = ? AND user_id = ?", postID, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := pc.db.Delete(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	pc.bus.Publish(events.TopicPostDeleted, events.PostDeleted{
		PostID:   postID,
		AuthorID: userID,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

func (pc *PostController) GetPosts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset := (page - 1) * limit

	var posts []models.Post
	if err := pc.db.Preload("User").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	for i := range posts {
		posts[i].User.Password = ""
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (pc *PostController) LikePost(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var post models.Post
	if err := pc.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	like := models.PostLike{PostID: postID, UserID: userID}
	if err := pc.db.Create(&like).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Already liked this post"})
		return
	}

	pc.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("likes_count", gorm.Expr("likes_count + ?", 1))

	c.JSON(http.StatusOK, gin.H{"message": "Post liked successfully"})
}

type CreateReplyRequest struct {
	Body string `json:"body" binding:"required"`
}

func (pc *PostController) CreateReply(c *gin.Context) {
	userID := c.GetString("user_id")
	postID := c.Param("id")

	var req CreateReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := pc.db.First(&post, "id = ?", postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	reply := models.Reply{
		ID:     uuid.New().String(),
		PostID: postID,
		UserID: userID,
		Body:   req.Body,
	}

	if err := pc.db.Create(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reply"})
		return
	}

	pc.db.Model(&models.Post{}).Where("id = ?", postID).
		UpdateColumn("replies_count", gorm.Expr("replies_count + ?", 1))

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

package handlers

import (
	"math"
	"net/http"
	"strconv"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/middleware"
	"hallway/internal/models"
	"hallway/internal/services"
	"hallway/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const anonymousName = "Anonymous"

type PostHandler struct {
	ratings *services.RatingService
	filter  *services.Filter
}

func NewPostHandler() *PostHandler {
	return &PostHandler{
		ratings: services.NewRatingService(),
		filter:  services.GetFilter(),
	}
}

// fillCommentCounts batch-fills the comment count for a page of posts.
func fillCommentCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type CountResult struct {
		PostID uint
		Count  int
	}
	var results []CountResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
}

type createPostRequest struct {
	Body        string `json:"body"`
	IsAnonymous bool   `json:"is_anonymous"`
}

func (h *PostHandler) Create(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, apperr.Validation("invalid request body"))
		return
	}
	if req.Body == "" {
		WriteError(c, apperr.Validation("post body is empty"))
		return
	}

	if clean, reason := h.filter.Check(req.Body); !clean {
		WriteError(c, apperr.Validation(reason))
		return
	}

	authorName := currentUser.Username
	if req.IsAnonymous {
		authorName = anonymousName
	}

	post := models.Post{
		Pid:         utils.GenerateRandomCode(8),
		UserID:      currentUser.ID,
		AuthorName:  authorName,
		IsAnonymous: req.IsAnonymous,
		Body:        req.Body,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		WriteError(c, err)
		return
	}

	post.BodyHTML = utils.RenderMarkdown(post.Body)
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// List returns the feed, newest first, with comment counts and (for a
// signed-in caller) which posts already got today's rating.
func (h *PostHandler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			page = pageNum
		}
	}

	perPage := 20
	offset := (page - 1) * perPage

	var total int64
	db.DB.Model(&models.Post{}).Count(&total)

	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	var posts []models.Post
	db.DB.Order("created_at DESC").
		Limit(perPage).
		Offset(offset).
		Find(&posts)

	fillCommentCounts(posts)

	if currentUser, ok := middleware.CurrentUser(c); ok {
		postIDs := make([]uint, len(posts))
		for i, p := range posts {
			postIDs[i] = p.ID
		}
		rated := h.ratings.RatedToday(currentUser.ID, postIDs)
		for i := range posts {
			posts[i].RatedToday = rated[posts[i].ID]
		}
	}

	for i := range posts {
		posts[i].BodyHTML = utils.RenderMarkdown(posts[i].Body)
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages,
	})
}

type rateRequest struct {
	Value int `json:"value"`
}

// Rate casts today's +1/-1 on a post.
func (h *PostHandler) Rate(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	post, err := h.findPost(c.Param("pid"))
	if err != nil {
		WriteError(c, err)
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, apperr.Validation("invalid request body"))
		return
	}

	if err := h.ratings.Cast(post.ID, currentUser.ID, req.Value); err != nil {
		WriteError(c, err)
		return
	}

	// Re-read the aggregate after the committed increment
	var likes int
	db.DB.Model(&models.Post{}).Where("id = ?", post.ID).
		Select("likes").Scan(&likes)

	c.JSON(http.StatusOK, gin.H{"success": true, "likes": likes})
}

type commentRequest struct {
	Body string `json:"body"`
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	post, err := h.findPost(c.Param("pid"))
	if err != nil {
		WriteError(c, err)
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Body == "" {
		WriteError(c, apperr.Validation("comment body is empty"))
		return
	}

	if clean, reason := h.filter.Check(req.Body); !clean {
		WriteError(c, apperr.Validation(reason))
		return
	}

	comment := models.Comment{
		Cid:        utils.GenerateRandomCode(8),
		PostID:     post.ID,
		UserID:     currentUser.ID,
		AuthorName: currentUser.Username,
		Body:       req.Body,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *PostHandler) ListComments(c *gin.Context) {
	post, err := h.findPost(c.Param("pid"))
	if err != nil {
		WriteError(c, err)
		return
	}

	var comments []models.Comment
	db.DB.Where("post_id = ?", post.ID).
		Order("created_at DESC").
		Limit(100).
		Find(&comments)

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type reportRequest struct {
	Reason string `json:"reason"`
}

// Report records the report and bumps the post's report counter atomically.
func (h *PostHandler) Report(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	post, err := h.findPost(c.Param("pid"))
	if err != nil {
		WriteError(c, err)
		return
	}

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Reason == "" {
		WriteError(c, apperr.Validation("report reason is required"))
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		report := models.Report{
			PostID: post.ID,
			UserID: currentUser.ID,
			Reason: req.Reason,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", post.ID).
			UpdateColumn("reports", gorm.Expr("reports + ?", 1)).Error
	})
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PostHandler) findPost(pid string) (*models.Post, error) {
	var post models.Post
	if err := db.DB.Where("pid = ?", pid).First(&post).Error; err != nil {
		return nil, apperr.NotFound("post not found")
	}
	return &post, nil
}

package handlers

import (
	"net/http"
	"strings"
	"time"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/models"
	"hallway/internal/services"
	"hallway/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserHandler struct {
	names *services.NameService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		names: services.NewNameService(),
	}
}

// Profile - public profile by id
func (h *UserHandler) Profile(c *gin.Context) {
	// Parse before querying; a raw path segment must never reach the WHERE clause
	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		WriteError(c, apperr.NotFound("user not found"))
		return
	}

	var user models.User
	if err := db.DB.First(&user, id).Error; err != nil {
		WriteError(c, apperr.NotFound("user not found"))
		return
	}

	var postCount int64
	db.DB.Model(&models.Post{}).
		Where("user_id = ? AND is_anonymous = ?", user.ID, false).
		Count(&postCount)

	c.JSON(http.StatusOK, gin.H{
		"user":       userJSON(&user),
		"post_count": postCount,
	})
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

// Update changes the caller's username through the reservation component and
// refreshes the generated avatar to match, mirroring what registration does.
func (h *UserHandler) Update(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, apperr.Validation("invalid request body"))
		return
	}

	desired := strings.TrimSpace(req.Username)
	if desired != "" && desired != currentUser.Username {
		if err := h.names.Reserve(currentUser.ID, desired, currentUser.Username); err != nil {
			WriteError(c, err)
			return
		}
		currentUser.Username = desired

		// Only regenerate when the user never uploaded a custom avatar
		if strings.Contains(currentUser.AvatarURL, "dicebear.com") || currentUser.AvatarURL == "" {
			currentUser.AvatarURL = services.IdenticonURL(desired)
			db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).
				Update("avatar_url", currentUser.AvatarURL)
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": userJSON(currentUser)})
}

// UploadAvatar stores the posted image with the blob host and keeps only its URL.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	currentUser := mustCurrentUser(c)

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		WriteError(c, apperr.Validation("avatar file is required"))
		return
	}
	defer file.Close()

	url, err := services.UploadAvatar(file, header)
	if err != nil {
		WriteError(c, apperr.Transient("avatar upload failed", err))
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).
		Update("avatar_url", url).Error; err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// Search finds profiles by username substring, most-liked first.
func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"users": []gin.H{}})
		return
	}

	var users []models.User
	db.DB.Where("username <> '' AND LOWER(username) LIKE ?", "%"+strings.ToLower(q)+"%").
		Order("likes DESC").
		Limit(50).
		Find(&users)

	results := make([]gin.H, 0, len(users))
	for i := range users {
		results = append(results, userJSON(&users[i]))
	}
	c.JSON(http.StatusOK, gin.H{"users": results})
}

type likeRequest struct {
	Value int `json:"value"`
}

// Like moves a profile's like counter up or down. Unlike post ratings this is
// deliberately unbounded; only the post path is rate limited.
func (h *UserHandler) Like(c *gin.Context) {
	mustCurrentUser(c)

	id := utils.StringToInt(c.Param("id"))
	if id <= 0 {
		WriteError(c, apperr.NotFound("user not found"))
		return
	}

	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Value != 1 && req.Value != -1) {
		WriteError(c, apperr.Validation("like value must be +1 or -1"))
		return
	}

	res := db.DB.Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", req.Value))
	if res.Error != nil {
		WriteError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		WriteError(c, apperr.NotFound("user not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Top returns the five most-liked profiles, cached for a minute.
func (h *UserHandler) Top(c *gin.Context) {
	const cacheKey = "users:top"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if data, ok := cached.([]gin.H); ok {
			c.JSON(http.StatusOK, gin.H{"users": data})
			return
		}
	}

	var users []models.User
	db.DB.Where("username <> ''").
		Order("likes DESC").
		Limit(5).
		Find(&users)

	results := make([]gin.H, 0, len(users))
	for i := range users {
		results = append(results, userJSON(&users[i]))
	}

	utils.GetCache().Set(cacheKey, results, 1*time.Minute)

	c.JSON(http.StatusOK, gin.H{"users": results})
}

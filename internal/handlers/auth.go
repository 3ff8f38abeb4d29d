package handlers

import (
	"net/http"
	"strings"

	"hallway/internal/apperr"
	"hallway/internal/db"
	"hallway/internal/middleware"
	"hallway/internal/models"
	"hallway/internal/services"
	"hallway/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	names *services.NameService
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{
		names: services.NewNameService(),
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// Register creates the identity and reserves its username in one transaction,
// so a lost name race rolls the identity back with it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, apperr.Validation("invalid request body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if !strings.Contains(req.Email, "@") {
		WriteError(c, apperr.Validation("invalid email address"))
		return
	}
	if len(req.Password) < 6 {
		WriteError(c, apperr.Validation("password must be at least 6 characters"))
		return
	}
	if len(req.Username) < 3 {
		WriteError(c, apperr.Validation("username must be at least 3 characters"))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		WriteError(c, err)
		return
	}

	user := models.User{
		Email:     req.Email,
		Password:  hash,
		AvatarURL: services.IdenticonURL(req.Username),
	}

	if err := h.names.Register(&user, req.Username); err != nil {
		WriteError(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusCreated, gin.H{"user": userJSON(&user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, apperr.Validation("invalid request body"))
		return
	}

	var user models.User
	err := db.DB.Where("email = ?", strings.TrimSpace(strings.ToLower(req.Email))).
		First(&user).Error
	if err != nil || !utils.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	c.JSON(http.StatusOK, gin.H{"user": userJSON(&user)})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the signed-in identity, or user: null for anonymous callers.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userJSON(user)})
}

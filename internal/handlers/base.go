package handlers

import (
	"log"

	"hallway/internal/apperr"
	"hallway/internal/middleware"
	"hallway/internal/models"

	"github.com/gin-gonic/gin"
)

// WriteError maps a classified error onto the JSON error shape the client
// acts on: {"error": ..., "code": ...}.
func WriteError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Type == apperr.TypeTransient {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{"error": e.Message}
	if e.Code != "" {
		body["code"] = e.Code
	}
	c.JSON(e.HTTPStatus(), body)
}

func mustCurrentUser(c *gin.Context) *models.User {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		// AuthRequired guards every route that calls this
		panic("handler reached without a signed-in user")
	}
	return user
}

// userJSON is the public identity shape shared by auth and profile responses.
func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
		"likes":      u.Likes,
		"created_at": u.CreatedAt,
	}
}

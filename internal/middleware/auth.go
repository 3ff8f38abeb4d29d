package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"hallway/internal/db"
	"hallway/internal/models"
	"hallway/internal/retry"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"

var profileRetryPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 500 * time.Millisecond,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		log.Printf("Profile fetch attempt %d failed: %v, retrying in %s", attempt, err, backoff)
	},
}

// AuthRequired rejects requests without a signed-in user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// LoadUser resolves the session's user and sets it on the context. Transient
// storage errors are retried with increasing delay; after exhaustion the
// request proceeds anonymously rather than failing outright.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			user, err := fetchUser(c.Request.Context(), userID)
			if err == nil {
				c.Set(CheckUserKey, user)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Proceeding without profile for session user %v: %v", userID, err)
			}
		}
		c.Next()
	}
}

func fetchUser(ctx context.Context, userID interface{}) (*models.User, error) {
	return retry.Do(ctx, profileRetryPolicy,
		func(err error) bool {
			// A missing row is permanent; anything else is assumed transient.
			return !errors.Is(err, gorm.ErrRecordNotFound)
		},
		func() (*models.User, error) {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err != nil {
				return nil, err
			}
			return &user, nil
		})
}

// CurrentUser returns the user LoadUser attached, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CheckUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

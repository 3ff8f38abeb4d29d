package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:32" json:"username"` // display name, bound via the usernames table
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	AvatarURL string    `json:"avatar_url"`
	Likes     int       `gorm:"default:0" json:"likes"` // profile likes, unbounded counter
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

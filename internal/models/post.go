package models

import (
	"time"
)

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	AuthorName  string    `gorm:"size:32" json:"author_name"` // "Anonymous" when IsAnonymous
	IsAnonymous bool      `gorm:"default:false" json:"is_anonymous"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	Likes       int       `gorm:"default:0" json:"likes"`   // aggregate of daily ratings
	Reports     int       `gorm:"default:0" json:"reports"` // aggregate of report rows
	CreatedAt   time.Time `json:"created_at"`

	// Filled at query time, not stored
	BodyHTML     string `gorm:"-" json:"body_html"`
	CommentCount int    `gorm:"-" json:"comment_count"`
	RatedToday   bool   `gorm:"-" json:"rated_today"`
}

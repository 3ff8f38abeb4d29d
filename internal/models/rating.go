package models

import (
	"time"
)

// Rating records one vote on a post. The composite unique index on
// (post_id, user_id, day) is what enforces one rating per user per post per
// calendar day; the insert's rejection is the single source of truth.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user_day" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user_day" json:"user_id"`
	Day       string    `gorm:"size:10;not null;uniqueIndex:idx_post_user_day" json:"day"` // UTC date, YYYY-MM-DD
	Value     int       `gorm:"not null" json:"value"`                                     // 1 or -1
	CreatedAt time.Time `json:"created_at"`
}

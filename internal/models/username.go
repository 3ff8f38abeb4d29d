package models

import (
	"time"
)

// Username is the shared name index. The primary key on Name is the atomic
// conditional-write: claiming a name is an insert that the database rejects
// when the row already exists. Names are stored lowercased.
type Username struct {
	Name      string    `gorm:"primaryKey;size:32" json:"name"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"
)

type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      uint      `gorm:"not null;index" json:"room_id"`
	Room        Room      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	DisplayName string    `gorm:"size:32;not null" json:"display_name"` // username or anonymous name
	Body        string    `gorm:"type:text;not null" json:"body"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

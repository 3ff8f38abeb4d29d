package models

import (
	"time"
)

type RoomKind string

const (
	RoomKindPublic RoomKind = "public" // messages carry the sender's username
	RoomKindAnon   RoomKind = "anon"   // messages carry a per-connection anonymous name
)

type Room struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;unique" json:"name"`
	Kind        RoomKind  `gorm:"type:varchar(10);not null" json:"kind"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

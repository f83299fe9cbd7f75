package models

import (
	"time"

	"gorm.io/gorm"
)

type Player struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	GameID      string         `json:"game_id" gorm:"not null;index"`
	Name        string         `json:"name" gorm:"not null"`
	CharacterID string         `json:"character_id"`
	IsHost      bool           `json:"is_host" gorm:"not null;default:false"`
	IsConnected bool           `json:"is_connected" gorm:"not null;default:false"`
	JoinedAt    time.Time      `json:"joined_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Game Game `json:"game,omitempty"`
}

package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusWaiting    = "waiting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
)

type Game struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	StoryID      string         `json:"story_id" gorm:"not null"`
	Status       string         `json:"status" gorm:"not null;default:'waiting'"` // waiting, in_progress, finished
	CurrentPhase GamePhase      `json:"current_phase" gorm:"not null;default:'lobby'"`
	HostID       string         `json:"host_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Players []Player `json:"players,omitempty" gorm:"foreignKey:GameID"`
}

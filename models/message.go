package models

import "time"

const (
	MessageKindChat   = "chat"
	MessageKindSystem = "system"
)

// Message is an append-only chat or system message. SenderName is denormalized
// so transcripts survive player removal.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	GameID     string    `json:"game_id" gorm:"not null;index"`
	PlayerID   string    `json:"player_id"`
	SenderName string    `json:"sender_name" gorm:"not null"`
	Content    string    `json:"content" gorm:"not null"`
	Kind       string    `json:"kind" gorm:"not null;default:'chat'"` // chat, system
	CreatedAt  time.Time `json:"created_at"`
}

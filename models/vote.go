package models

import "time"

// Vote holds one live vote per (game, voter). A new vote replaces the prior one.
type Vote struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	GameID    string    `json:"game_id" gorm:"not null;uniqueIndex:idx_game_voter"`
	VoterID   string    `json:"voter_id" gorm:"not null;uniqueIndex:idx_game_voter"`
	SuspectID string    `json:"suspect_id" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

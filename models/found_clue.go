package models

import "time"

// FoundClue records a one-time clue discovery. The composite unique index makes
// discovery idempotent per (game, clue) pair.
type FoundClue struct {
	ID      uint      `json:"id" gorm:"primaryKey"`
	GameID  string    `json:"game_id" gorm:"not null;uniqueIndex:idx_game_clue"`
	ClueID  string    `json:"clue_id" gorm:"not null;uniqueIndex:idx_game_clue"`
	FoundBy string    `json:"found_by" gorm:"not null"`
	FoundAt time.Time `json:"found_at"`

	// Relationships
	Finder Player `json:"finder,omitempty" gorm:"foreignKey:FoundBy"`
}

package services

import (
	"errors"
	"testing"

	"jubensha/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestGameService(t *testing.T) (*GameService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Game{},
		&models.Player{},
		&models.FoundClue{},
		&models.Vote{},
		&models.Message{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return NewGameService(db, nil, loadTestCatalog(t)), db
}

// startedGame creates a two-player game and walks it to script_reading.
func startedGame(t *testing.T, svc *GameService) (*models.Game, *models.Player, *models.Player) {
	t.Helper()

	game, host, err := svc.CreateGame(&CreateGameRequest{StoryID: "foggy_manor", HostName: "Alice"})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	guest, err := svc.JoinGame(game.ID, &JoinGameRequest{PlayerName: "Bob"})
	if err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	if _, err := svc.SelectCharacter(game.ID, host.ID, "char_butler"); err != nil {
		t.Fatalf("SelectCharacter(host): %v", err)
	}
	if _, err := svc.SelectCharacter(game.ID, guest.ID, "char_niece"); err != nil {
		t.Fatalf("SelectCharacter(guest): %v", err)
	}
	game, err = svc.StartGame(game.ID, host.ID)
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	return game, host, guest
}

func TestCastVoteLastWriteWins(t *testing.T) {
	svc, db := newTestGameService(t)
	game, host, _ := startedGame(t, svc)

	if err := svc.CastVote(game.ID, host.ID, "char_butler"); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if err := svc.CastVote(game.ID, host.ID, "char_niece"); err != nil {
		t.Fatalf("second vote: %v", err)
	}

	var votes []models.Vote
	if err := db.Where("game_id = ? AND voter_id = ?", game.ID, host.ID).Find(&votes).Error; err != nil {
		t.Fatalf("load votes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("stored %d votes, want exactly one live vote per voter", len(votes))
	}
	if votes[0].SuspectID != "char_niece" {
		t.Fatalf("stored suspect = %s, want the later vote char_niece", votes[0].SuspectID)
	}
}

func TestCastVoteUnknownSuspect(t *testing.T) {
	svc, db := newTestGameService(t)
	game, host, _ := startedGame(t, svc)

	if err := svc.CastVote(game.ID, host.ID, "char_ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("CastVote(unknown suspect) error = %v, want ErrNotFound", err)
	}

	var count int64
	if err := db.Model(&models.Vote{}).Where("game_id = ?", game.ID).Count(&count).Error; err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected vote was stored, count = %d", count)
	}
}

func TestAdvancePhaseNonHostUnauthorized(t *testing.T) {
	svc, _ := newTestGameService(t)
	game, _, guest := startedGame(t, svc)

	if _, err := svc.AdvancePhase(game.ID, guest.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("AdvancePhase(non-host) error = %v, want ErrUnauthorized", err)
	}

	got, err := svc.GetGame(game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.CurrentPhase != models.PhaseScriptReading {
		t.Fatalf("phase = %s, want script_reading unchanged after rejected advance", got.CurrentPhase)
	}
}

func TestAdvancePhaseRunsToEnded(t *testing.T) {
	svc, _ := newTestGameService(t)
	game, host, _ := startedGame(t, svc)

	want := []models.GamePhase{
		models.PhaseInvestigation,
		models.PhaseDiscussion,
		models.PhaseVoting,
		models.PhaseReveal,
		models.PhaseEnded,
	}
	for _, phase := range want {
		next, err := svc.AdvancePhase(game.ID, host.ID)
		if err != nil {
			t.Fatalf("AdvancePhase to %s: %v", phase, err)
		}
		if next != phase {
			t.Fatalf("AdvancePhase() = %s, want %s", next, phase)
		}
	}

	got, err := svc.GetGame(game.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Status != models.StatusFinished {
		t.Fatalf("status = %s, want finished once the game ends", got.Status)
	}

	if _, err := svc.AdvancePhase(game.ID, host.ID); !errors.Is(err, ErrGameEnded) {
		t.Fatalf("AdvancePhase(ended game) error = %v, want ErrGameEnded", err)
	}
}

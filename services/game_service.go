package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"jubensha/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GameService struct {
	db      *gorm.DB
	redis   *redis.Client
	stories *StoryService

	// One lock per game keeps read-check-write sequences (search, vote,
	// character select, phase changes) atomic per session.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGameService wires the session store. A nil redis client disables the
// snapshot cache; every state read then rebuilds from the database.
func NewGameService(db *gorm.DB, redisClient *redis.Client, stories *StoryService) *GameService {
	return &GameService{
		db:      db,
		redis:   redisClient,
		stories: stories,
		locks:   make(map[string]*sync.Mutex),
	}
}

type CreateGameRequest struct {
	StoryID  string `json:"story_id" binding:"required"`
	HostName string `json:"host_name" binding:"required"`
}

type JoinGameRequest struct {
	PlayerName string `json:"player_name" binding:"required"`
}

type SelectCharacterRequest struct {
	PlayerID    string `json:"player_id" binding:"required"`
	CharacterID string `json:"character_id" binding:"required"`
}

type PlayerInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CharacterID   string `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	IsHost        bool   `json:"is_host"`
	IsConnected   bool   `json:"is_connected"`
}

type GameState struct {
	ID         string           `json:"id"`
	StoryID    string           `json:"story_id"`
	StoryTitle string           `json:"story_title"`
	Status     string           `json:"status"`
	Phase      models.GamePhase `json:"phase"`
	HostID     string           `json:"host_id"`
	Players    []PlayerInfo     `json:"players"`
	CreatedAt  time.Time        `json:"created_at"`
}

type ClueInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	FoundBy     string    `json:"found_by"`
	FoundAt     time.Time `json:"found_at"`
}

// gameLock returns the mutex owned by a single game session.
func (s *GameService) gameLock(gameID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[gameID] = lock
	}
	return lock
}

// CreateGame creates a new game session with the host as its first player.
func (s *GameService) CreateGame(req *CreateGameRequest) (*models.Game, *models.Player, error) {
	story, err := s.stories.Get(req.StoryID)
	if err != nil {
		return nil, nil, err
	}

	// Short game ID for easy sharing, full UUID for the player.
	gameID := uuid.NewString()[:8]
	hostID := uuid.NewString()

	game := models.Game{
		ID:           gameID,
		StoryID:      story.ID,
		Status:       models.StatusWaiting,
		CurrentPhase: models.PhaseLobby,
		HostID:       hostID,
	}
	if err := s.db.Create(&game).Error; err != nil {
		return nil, nil, err
	}

	host := models.Player{
		ID:       hostID,
		GameID:   gameID,
		Name:     req.HostName,
		IsHost:   true,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&host).Error; err != nil {
		return nil, nil, err
	}

	s.refreshSnapshot(gameID)
	return &game, &host, nil
}

// GetGame loads a game row by ID.
func (s *GameService) GetGame(gameID string) (*models.Game, error) {
	var game models.Game
	if err := s.db.First(&game, "id = ?", gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
		}
		return nil, err
	}
	return &game, nil
}

// GetGameState returns the full session view including the player roster.
func (s *GameService) GetGameState(gameID string) (*GameState, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	var players []models.Player
	if err := s.db.Where("game_id = ?", gameID).Order("joined_at").Find(&players).Error; err != nil {
		return nil, err
	}

	storyTitle := "Unknown"
	if story, err := s.stories.Get(game.StoryID); err == nil {
		storyTitle = story.Title
	}

	state := &GameState{
		ID:         game.ID,
		StoryID:    game.StoryID,
		StoryTitle: storyTitle,
		Status:     game.Status,
		Phase:      game.CurrentPhase,
		HostID:     game.HostID,
		Players:    make([]PlayerInfo, 0, len(players)),
		CreatedAt:  game.CreatedAt,
	}

	for _, p := range players {
		info := PlayerInfo{
			ID:          p.ID,
			Name:        p.Name,
			CharacterID: p.CharacterID,
			IsHost:      p.IsHost,
			IsConnected: p.IsConnected,
		}
		if p.CharacterID != "" {
			if char, err := s.stories.Character(game.StoryID, p.CharacterID); err == nil {
				info.CharacterName = char.Name
			}
		}
		state.Players = append(state.Players, info)
	}

	return state, nil
}

// JoinGame adds a player to a waiting game.
func (s *GameService) JoinGame(gameID string, req *JoinGameRequest) (*models.Player, error) {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	if game.Status != models.StatusWaiting {
		return nil, fmt.Errorf("game already in progress: %w", ErrConflict)
	}

	story, err := s.stories.Get(game.StoryID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Player{}).Where("game_id = ?", gameID).Count(&count).Error; err != nil {
		return nil, err
	}
	if int(count) >= story.PlayerCount.Max {
		return nil, fmt.Errorf("game is full: %w", ErrConflict)
	}

	var existing models.Player
	if err := s.db.Where("game_id = ? AND name = ?", gameID, req.PlayerName).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("player name already taken: %w", ErrConflict)
	}

	player := models.Player{
		ID:       uuid.NewString(),
		GameID:   gameID,
		Name:     req.PlayerName,
		JoinedAt: time.Now(),
	}
	if err := s.db.Create(&player).Error; err != nil {
		return nil, err
	}

	s.refreshSnapshot(gameID)
	return &player, nil
}

// GetPlayer loads a player that belongs to the given game.
func (s *GameService) GetPlayer(gameID, playerID string) (*models.Player, error) {
	var player models.Player
	if err := s.db.Where("id = ? AND game_id = ?", playerID, gameID).First(&player).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("player %s in game %s: %w", playerID, gameID, ErrNotFound)
		}
		return nil, err
	}
	return &player, nil
}

// AvailableCharacters returns the story's characters with taken flags.
func (s *GameService) AvailableCharacters(gameID string) ([]models.CharacterPublic, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	characters, err := s.stories.Characters(game.StoryID)
	if err != nil {
		return nil, err
	}

	var players []models.Player
	if err := s.db.Where("game_id = ? AND character_id <> ''", gameID).Find(&players).Error; err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(players))
	for _, p := range players {
		taken[p.CharacterID] = true
	}
	for i := range characters {
		characters[i].IsTaken = taken[characters[i].ID]
	}
	return characters, nil
}

// SelectCharacter assigns a character to a player. Each character may be taken
// by at most one player per game, and a player picks at most once.
func (s *GameService) SelectCharacter(gameID, playerID, characterID string) (*models.Character, error) {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	char, err := s.stories.Character(game.StoryID, characterID)
	if err != nil {
		return nil, err
	}

	player, err := s.GetPlayer(gameID, playerID)
	if err != nil {
		return nil, err
	}
	if player.CharacterID != "" {
		return nil, fmt.Errorf("character already selected: %w", ErrConflict)
	}

	var holder models.Player
	if err := s.db.Where("game_id = ? AND character_id = ?", gameID, characterID).First(&holder).Error; err == nil {
		return nil, fmt.Errorf("character already taken: %w", ErrConflict)
	}

	if err := s.db.Model(&models.Player{}).
		Where("id = ? AND game_id = ?", playerID, gameID).
		Update("character_id", characterID).Error; err != nil {
		return nil, err
	}

	s.refreshSnapshot(gameID)
	return char, nil
}

// StartGame moves a waiting game into script_reading. Host only.
func (s *GameService) StartGame(gameID, requesterID string) (*models.Game, error) {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	if game.HostID != requesterID {
		return nil, fmt.Errorf("only the host can start the game: %w", ErrUnauthorized)
	}
	if game.Status != models.StatusWaiting {
		return nil, fmt.Errorf("game already started: %w", ErrConflict)
	}

	story, err := s.stories.Get(game.StoryID)
	if err != nil {
		return nil, err
	}

	var players []models.Player
	if err := s.db.Where("game_id = ?", gameID).Find(&players).Error; err != nil {
		return nil, err
	}
	if len(players) < story.PlayerCount.Min {
		return nil, fmt.Errorf("need at least %d players: %w", story.PlayerCount.Min, ErrConflict)
	}
	for _, p := range players {
		if p.CharacterID == "" {
			return nil, fmt.Errorf("all players must select characters: %w", ErrPreconditionFailed)
		}
	}

	updates := map[string]interface{}{
		"status":        models.StatusInProgress,
		"current_phase": models.PhaseScriptReading,
	}
	if err := s.db.Model(game).Updates(updates).Error; err != nil {
		return nil, err
	}
	game.Status = models.StatusInProgress
	game.CurrentPhase = models.PhaseScriptReading

	s.refreshSnapshot(gameID)
	log.Printf("Game %s started with %d players", gameID, len(players))
	return game, nil
}

// AdvancePhase moves the game to the next phase in the fixed progression.
// Host only; fails once the game has ended.
func (s *GameService) AdvancePhase(gameID, requesterID string) (models.GamePhase, error) {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return "", err
	}

	if game.HostID != requesterID {
		return "", fmt.Errorf("only the host can advance the phase: %w", ErrUnauthorized)
	}

	next, ok := game.CurrentPhase.Next()
	if !ok {
		return "", fmt.Errorf("phase %s: %w", game.CurrentPhase, ErrGameEnded)
	}

	updates := map[string]interface{}{"current_phase": next}
	if next == models.PhaseEnded {
		updates["status"] = models.StatusFinished
	}
	if err := s.db.Model(game).Updates(updates).Error; err != nil {
		return "", err
	}

	s.refreshSnapshot(gameID)
	log.Printf("Game %s advanced to phase %s", gameID, next)
	return next, nil
}

// SearchLocation resolves a player's search action. The first story-ordered,
// filter-matching clue not yet found in this game is recorded and returned;
// nil means the search turned up nothing. One discovery per action.
func (s *GameService) SearchLocation(gameID, playerID, locationID, item string) (*models.Clue, error) {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	clues, err := s.stories.CluesAtLocation(game.StoryID, locationID)
	if err != nil {
		return nil, err
	}

	var found []models.FoundClue
	if err := s.db.Where("game_id = ?", gameID).Find(&found).Error; err != nil {
		return nil, err
	}
	foundSet := make(map[string]bool, len(found))
	for _, f := range found {
		foundSet[f.ClueID] = true
	}

	clue := pickClue(clues, item, foundSet)
	if clue == nil {
		return nil, nil
	}

	record := models.FoundClue{
		GameID:  gameID,
		ClueID:  clue.ID,
		FoundBy: playerID,
		FoundAt: time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		// The unique index backstops the lock: a concurrent winner means
		// this search found nothing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil
		}
		return nil, err
	}

	log.Printf("Player %s found clue %s in game %s", playerID, clue.ID, gameID)
	return clue, nil
}

// pickClue implements the search policy: story order, optional case-insensitive
// substring filter on the discovery hint, skip already-found, first match wins.
func pickClue(clues []models.Clue, item string, found map[string]bool) *models.Clue {
	needle := strings.ToLower(item)
	for i := range clues {
		if item != "" && !strings.Contains(strings.ToLower(clues[i].DiscoveryHint), needle) {
			continue
		}
		if found[clues[i].ID] {
			continue
		}
		return &clues[i]
	}
	return nil
}

// CastVote records or replaces the voter's live vote. Last write wins.
func (s *GameService) CastVote(gameID, voterID, suspectID string) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	game, err := s.GetGame(gameID)
	if err != nil {
		return err
	}
	if _, err := s.stories.Character(game.StoryID, suspectID); err != nil {
		return err
	}

	vote := models.Vote{
		GameID:    gameID,
		VoterID:   voterID,
		SuspectID: suspectID,
		CreatedAt: time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}, {Name: "voter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"suspect_id", "created_at"}),
	}).Create(&vote).Error
}

// SaveMessage appends a chat or system message to the transcript.
func (s *GameService) SaveMessage(gameID, playerID, senderName, content, kind string) (*models.Message, error) {
	message := models.Message{
		GameID:     gameID,
		PlayerID:   playerID,
		SenderName: senderName,
		Content:    content,
		Kind:       kind,
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// RecentMessages returns the latest chat messages in chronological order.
func (s *GameService) RecentMessages(gameID string, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("game_id = ? AND kind = ?", gameID, models.MessageKindChat).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// FoundClues lists this game's discoveries joined with story clue details.
func (s *GameService) FoundClues(gameID string) ([]ClueInfo, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	var found []models.FoundClue
	if err := s.db.Where("game_id = ?", gameID).Order("found_at").Find(&found).Error; err != nil {
		return nil, err
	}

	infos := make([]ClueInfo, 0, len(found))
	for _, f := range found {
		info := ClueInfo{ID: f.ClueID, FoundBy: f.FoundBy, FoundAt: f.FoundAt}
		if clue, err := s.stories.Clue(game.StoryID, f.ClueID); err == nil {
			info.Name = clue.Name
			info.Description = clue.Description
			info.Location = clue.Location
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// FoundClueIDs returns the identifiers of every clue discovered so far.
func (s *GameService) FoundClueIDs(gameID string) ([]string, error) {
	var found []models.FoundClue
	if err := s.db.Where("game_id = ?", gameID).Order("found_at").Find(&found).Error; err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(found))
	for _, f := range found {
		ids = append(ids, f.ClueID)
	}
	return ids, nil
}

// PlayerCharacter returns the player's assigned character with private fields.
func (s *GameService) PlayerCharacter(gameID, playerID string) (*models.Character, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	player, err := s.GetPlayer(gameID, playerID)
	if err != nil {
		return nil, err
	}
	if player.CharacterID == "" {
		return nil, fmt.Errorf("no character selected: %w", ErrPreconditionFailed)
	}

	return s.stories.Character(game.StoryID, player.CharacterID)
}

// IsHost reports whether the player is the session host.
func (s *GameService) IsHost(gameID, playerID string) (bool, error) {
	game, err := s.GetGame(gameID)
	if err != nil {
		return false, err
	}
	return game.HostID == playerID, nil
}

// SetConnected toggles a player's connection flag. Owned by the hub.
func (s *GameService) SetConnected(gameID, playerID string, connected bool) error {
	err := s.db.Model(&models.Player{}).
		Where("id = ? AND game_id = ?", playerID, gameID).
		Update("is_connected", connected).Error
	if err != nil {
		return err
	}

	s.refreshSnapshot(gameID)
	return nil
}

// refreshSnapshot rebuilds the Redis game-state snapshot from the database.
// The snapshot only serves state sync on (re)connect, so failures are logged
// and swallowed.
func (s *GameService) refreshSnapshot(gameID string) {
	if s.redis == nil {
		return
	}

	state, err := s.GetGameState(gameID)
	if err != nil {
		log.Printf("Failed to build game state for snapshot %s: %v", gameID, err)
		return
	}

	data, err := json.Marshal(state)
	if err != nil {
		log.Printf("Failed to marshal game state for %s: %v", gameID, err)
		return
	}

	if err := s.redis.Set(context.Background(), "game:"+gameID, data, 2*time.Hour).Err(); err != nil {
		log.Printf("Failed to store game state in Redis for %s: %v", gameID, err)
	}
}

// CurrentGameState returns the snapshot used for sync on connect, falling back
// to a database rebuild when Redis has nothing.
func (s *GameService) CurrentGameState(gameID string) (*GameState, error) {
	if s.redis != nil {
		data, err := s.redis.Get(context.Background(), "game:"+gameID).Result()
		if err == nil {
			var state GameState
			if err := json.Unmarshal([]byte(data), &state); err == nil {
				return &state, nil
			}
			log.Printf("Failed to unmarshal game state for %s, rebuilding", gameID)
		} else if err != redis.Nil {
			log.Printf("Redis error getting game state for %s: %v", gameID, err)
		}
	}

	state, err := s.GetGameState(gameID)
	if err != nil {
		return nil, err
	}
	s.refreshSnapshot(gameID)
	return state, nil
}

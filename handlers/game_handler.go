package handlers

import (
	"errors"
	"net/http"

	"jubensha/models"
	"jubensha/services"

	"github.com/gin-gonic/gin"
)

type GameHandler struct {
	gameService *services.GameService
	hub         *services.Hub
}

func NewGameHandler(gameService *services.GameService, hub *services.Hub) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		hub:         hub,
	}
}

// statusForError maps the service error taxonomy to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrGameEnded):
		return http.StatusConflict
	case errors.Is(err, services.ErrPreconditionFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req services.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, host, err := h.gameService.CreateGame(&req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"game_id":   game.ID,
		"player_id": host.ID,
		"message":   "Game created! Share code: " + game.ID,
	})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	gameID := c.Param("id")

	state, err := h.gameService.GetGameState(gameID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	gameID := c.Param("id")

	var req services.JoinGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	player, err := h.gameService.JoinGame(gameID, &req)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player_id": player.ID,
		"game_id":   gameID,
		"message":   "Joined game as " + player.Name,
	})
}

func (h *GameHandler) GetCharacters(c *gin.Context) {
	gameID := c.Param("id")

	characters, err := h.gameService.AvailableCharacters(gameID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, characters)
}

func (h *GameHandler) SelectCharacter(c *gin.Context) {
	gameID := c.Param("id")

	var req services.SelectCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	char, err := h.gameService.SelectCharacter(gameID, req.PlayerID, req.CharacterID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Selected character: " + char.Name})
}

func (h *GameHandler) StartGame(c *gin.Context) {
	gameID := c.Param("id")

	var req struct {
		PlayerID string `json:"player_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.StartGame(gameID, req.PlayerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.Broadcast(gameID, "phase_change", gin.H{"phase": game.CurrentPhase}, "")

	// Opening narration runs out-of-band; it never blocks the start call.
	go h.hub.NarrateToGame(gameID, models.PhaseScriptReading, "")

	c.JSON(http.StatusOK, gin.H{"message": "Game started!", "phase": game.CurrentPhase})
}

func (h *GameHandler) AdvancePhase(c *gin.Context) {
	gameID := c.Param("id")

	var req struct {
		PlayerID string `json:"player_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phase, err := h.gameService.AdvancePhase(gameID, req.PlayerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.hub.Broadcast(gameID, "phase_change", gin.H{"phase": phase}, "")

	// Phases without a narration template resolve to a no-op inside the hub.
	go h.hub.NarrateToGame(gameID, phase, "")

	c.JSON(http.StatusOK, gin.H{"message": "Advanced to " + string(phase), "phase": phase})
}

func (h *GameHandler) GetMyCharacter(c *gin.Context) {
	gameID := c.Param("id")
	playerID := c.Param("playerID")

	char, err := h.gameService.PlayerCharacter(gameID, playerID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, char)
}

func (h *GameHandler) GetFoundClues(c *gin.Context) {
	gameID := c.Param("id")

	clues, err := h.gameService.FoundClues(gameID)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, clues)
}

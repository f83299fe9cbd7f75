package routes

import (
	"log"
	"net/http"

	"jubensha/handlers"
	"jubensha/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

func SetupRoutes(
	router *gin.Engine,
	storyHandler *handlers.StoryHandler,
	gameHandler *handlers.GameHandler,
	hub *services.Hub,
	gameService *services.GameService,
) {
	// API routes
	api := router.Group("/api")
	{
		stories := api.Group("/stories")
		{
			stories.GET("", storyHandler.ListStories)
			stories.GET("/:id", storyHandler.GetStory)
			stories.GET("/:id/locations", storyHandler.GetLocations)
			stories.POST("/reload", storyHandler.ReloadStories)
		}

		games := api.Group("/games")
		{
			games.POST("", gameHandler.CreateGame)
			games.GET("/:id", gameHandler.GetGame)
			games.POST("/:id/join", gameHandler.JoinGame)
			games.GET("/:id/characters", gameHandler.GetCharacters)
			games.POST("/:id/select-character", gameHandler.SelectCharacter)
			games.POST("/:id/start", gameHandler.StartGame)
			games.POST("/:id/phase", gameHandler.AdvancePhase)
			games.GET("/:id/my-character/:playerID", gameHandler.GetMyCharacter)
			games.GET("/:id/clues", gameHandler.GetFoundClues)
		}
	}

	// WebSocket endpoint for real-time game communication
	router.GET("/ws/games/:gameID/:playerID", func(c *gin.Context) {
		gameID := c.Param("gameID")
		playerID := c.Param("playerID")

		// The player must already belong to the game; the realtime channel
		// does not create players.
		if _, err := gameService.GetPlayer(gameID, playerID); err != nil {
			log.Printf("WebSocket rejected for game %s, player %s: %v", gameID, playerID, err)
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found in game"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for game %s, player %s: %v", gameID, playerID, err)
			return
		}

		if _, err := hub.Connect(conn, gameID, playerID); err != nil {
			log.Printf("WebSocket registration failed for game %s, player %s: %v", gameID, playerID, err)
			conn.Close()
		}
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

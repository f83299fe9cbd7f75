package main

import (
	"log"

	"jubensha/config"
	"jubensha/handlers"
	"jubensha/models"
	"jubensha/routes"
	"jubensha/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database models
	err = db.AutoMigrate(
		&models.Game{},
		&models.Player{},
		&models.FoundClue{},
		&models.Vote{},
		&models.Message{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis
	redisClient := config.InitRedis(cfg)

	// Load the story catalog before accepting any connections
	storyService := services.NewStoryService(cfg.StoriesDir)
	if err := storyService.Load(); err != nil {
		log.Fatal("Failed to load stories:", err)
	}

	// Initialize services
	gameService := services.NewGameService(db, redisClient, storyService)
	provider := services.NewOpenAIProvider(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	narratorService := services.NewNarratorService(provider, storyService, gameService)

	// Initialize WebSocket hub
	hub := services.NewHub(gameService, narratorService)

	// Initialize handlers
	storyHandler := handlers.NewStoryHandler(storyService)
	gameHandler := handlers.NewGameHandler(gameService, hub)

	// Setup Gin router
	router := gin.Default()

	// Setup routes
	routes.SetupRoutes(router, storyHandler, gameHandler, hub, gameService)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

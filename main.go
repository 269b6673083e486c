package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/serioha/ai-chatbot/api"
	"github.com/serioha/ai-chatbot/config"
	"github.com/serioha/ai-chatbot/database"
	"github.com/serioha/ai-chatbot/middleware"
	"github.com/serioha/ai-chatbot/models"
	"github.com/serioha/ai-chatbot/repository"
	"github.com/serioha/ai-chatbot/services"

	"gorm.io/gorm"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	if err := godotenv.Load(); err == nil {
		log.Println("INFO: [Main] Loaded environment from .env file.")
	}

	// Load application configuration
	config.LoadConfig()

	// Initialize database connection
	db, err := database.Init()
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to initialize database: %v", err)
	}

	// Auto-migrate database schema
	runMigrations(db)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	convRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	log.Println("INFO: [Main] Repositories initialized.")

	// Initialize services
	dispatcher := services.NewDispatcherFromConfig(config.AppConfig.LLM)
	chatService := services.NewChatService(messageRepo, convRepo, settingsRepo, dispatcher)
	log.Println("INFO: [Main] Services initialized.")

	// Initialize API handler with all dependencies
	apiHandler := api.NewAPIHandler(
		userRepo,
		convRepo,
		messageRepo,
		settingsRepo,
		chatService,
		dispatcher,
		db,
	)
	log.Println("INFO: [Main] API handler initialized.")

	// Create Gin engine
	r := gin.Default()
	r.SetTrustedProxies(nil)

	// Register middlewares
	r.Use(middleware.Logger())
	r.Use(middleware.Cors())
	log.Println("INFO: [Main] Middlewares registered.")

	// Register routes
	registerRoutes(r, apiHandler, userRepo)
	log.Println("INFO: [Main] Routes registered.")

	// Start the server
	serverPort := ":" + config.AppConfig.Server.Port
	if config.AppConfig.Server.Port == "" {
		log.Println("WARN: [Main] Server port not configured, using default :8080.")
		serverPort = ":8080"
	}
	log.Printf("INFO: [Main] Starting server on port %s", serverPort)
	if err := r.Run(serverPort); err != nil {
		log.Fatalf("FATAL: [Main] Server failed to start: %v", err)
	}
}

func runMigrations(db *gorm.DB) {
	log.Println("INFO: [Main] Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.UserSettings{},
		&models.Conversation{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("FATAL: [Main] Failed to auto-migrate database: %v", err)
	}
	log.Println("INFO: [Main] Database migration completed.")
}

func registerRoutes(r *gin.Engine, handler *api.APIHandler, userRepo repository.UserRepository) {
	apiGroup := r.Group("/api")
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", handler.RegisterHandler)
			authGroup.POST("/login", handler.LoginHandler)
			authGroup.POST("/logout", middleware.Auth(userRepo), handler.LogoutHandler)
		}

		authed := apiGroup.Group("")
		authed.Use(middleware.Auth(userRepo))
		{
			authed.GET("/models", handler.ModelsHandler)

			authed.GET("/conversations", handler.ListConversationsHandler)
			authed.POST("/conversations", handler.CreateConversationHandler)
			authed.DELETE("/conversations/:id", handler.DeleteConversationHandler)
			authed.GET("/conversations/:id/messages", handler.GetMessagesHandler)
			authed.POST("/conversations/:id/messages", handler.SendMessageHandler)

			authed.GET("/settings", handler.GetSettingsHandler)
			authed.PUT("/settings", handler.UpdateSettingsHandler)
		}
	}
}

package main

import (
	"log"
	"os"

	"hallway/internal/chat"
	"hallway/internal/db"
	"hallway/internal/handlers"
	"hallway/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Chat fan-out hub
	hub := chat.NewHub()
	defer hub.Stop()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("hallway_session", store))

	// Middleware
	r.Use(middleware.LoadUser())

	// Handlers
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	userHandler := handlers.NewUserHandler()
	chatHandler := handlers.NewChatHandler(hub)

	api := r.Group("/api")

	// Public routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/logout", authHandler.Logout)
	api.GET("/me", authHandler.Me)
	api.GET("/posts", postHandler.List)
	api.GET("/posts/:pid/comments", postHandler.ListComments)
	api.GET("/u/:id", userHandler.Profile)
	api.GET("/users/top", userHandler.Top)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.POST("/posts/:pid/rate", postHandler.Rate)
		authorized.POST("/posts/:pid/comments", postHandler.CreateComment)
		authorized.POST("/posts/:pid/report", postHandler.Report)

		authorized.PUT("/profile", userHandler.Update)
		authorized.POST("/profile/avatar", userHandler.UploadAvatar)
		authorized.GET("/users/search", userHandler.Search)
		authorized.POST("/u/:id/like", userHandler.Like)

		authorized.GET("/chat/rooms", chatHandler.Rooms)
		authorized.GET("/chat/:room/messages", chatHandler.History)
		authorized.GET("/chat/:room/ws", chatHandler.Serve)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Hallway server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

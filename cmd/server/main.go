package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"quiz-arena/internal/auth"
	"quiz-arena/internal/game"
	"quiz-arena/internal/models"
	"quiz-arena/pkg/cache"
	"quiz-arena/pkg/database"

	"github.com/gorilla/mux"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize database
	dbConfig := &database.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
	}

	db, err := database.NewPostgresDB(dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	err = db.AutoMigrate(
		&models.Client{},
		&models.Game{},
		&models.Question{},
		&models.GameSession{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize Redis cache
	redisCache := cache.NewRedisCache(os.Getenv("REDIS_ADDR"))

	// Initialize repositories
	authRepo := auth.NewRepository(db)
	gameRepo := game.NewRepository(db)

	// Initialize services
	jwtSecret := os.Getenv("JWT_SECRET")
	authService := auth.NewService(authRepo, jwtSecret)
	questionBank := game.NewQuestionBank(gameRepo)
	engine := game.NewEngine(gameRepo, questionBank, redisCache)
	projector := game.NewResultProjector(gameRepo)

	// Initialize handlers
	authHandler := auth.NewHandler(authService)
	gameHandler := game.NewHandler(engine, projector)

	// Setup router
	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Auth routes - no JWT required
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Game routes - JWT required
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(jwtSecret))

	apiRouter.HandleFunc("/games", gameHandler.ListGames).Methods("GET")
	apiRouter.HandleFunc("/games/{slug}", gameHandler.GetGame).Methods("GET", "OPTIONS")
	apiRouter.HandleFunc("/games/{slug}/start", gameHandler.StartSession).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/games/{slug}/sessions/{sessionID}/play", gameHandler.LoadForPlay).Methods("GET")
	apiRouter.HandleFunc("/games/{slug}/sessions/{sessionID}/finish", gameHandler.FinishSession).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/games/{slug}/sessions/{sessionID}/result", gameHandler.GetResult).Methods("GET")
	apiRouter.HandleFunc("/sessions", gameHandler.GetHistory).Methods("GET")

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port 8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown setup
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server shutdown gracefully")
}

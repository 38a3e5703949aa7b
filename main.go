package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/updoot/updoot-be/internal/api"
	"github.com/updoot/updoot-be/internal/auth"
	"github.com/updoot/updoot-be/internal/config"
	"github.com/updoot/updoot-be/internal/database"
	"github.com/updoot/updoot-be/internal/logger"
	"github.com/updoot/updoot-be/internal/mailer"
	"github.com/updoot/updoot-be/internal/monitoring"
	"github.com/updoot/updoot-be/internal/services"
	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/tokens"
	"github.com/updoot/updoot-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Production)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up Redis (sessions + reset tokens)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	sessions := auth.NewSessionManager(redisClient, cfg.Production)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up repositories and services
	userRepo := storage.NewUserRepository(db)
	postRepo := storage.NewPostRepository(db)
	voteRepo := storage.NewVoteRepository(db)

	tokenStore := tokens.NewRedisStore(redisClient)
	mail := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)

	userService := services.NewUserService(userRepo, tokenStore, mail, cfg.FrontendURL)
	postService := services.NewPostService(postRepo, hub)
	voteService := services.NewVoteService(voteRepo, postRepo, hub)

	// Set up and run the background points reconciler
	reconciler := monitoring.NewReconciler(postRepo)
	go reconciler.Run()

	// Set up router
	router := api.NewRouter(hub, sessions, userService, postService, voteService, cfg.CORSOrigin)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	reconciler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

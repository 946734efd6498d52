package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rngapp/rng-api/internal/api"
	"github.com/rngapp/rng-api/internal/config"
	"github.com/rngapp/rng-api/internal/database"
	"github.com/rngapp/rng-api/internal/logger"
	"github.com/rngapp/rng-api/internal/lucra"
	"github.com/rngapp/rng-api/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the Lucra API client
	if cfg.LucraAPIURL == "" || cfg.LucraAPIKey == "" {
		log.Warn().Msg("LUCRA_API_URL or LUCRA_API_KEY not set; outbound Lucra calls will fail")
	}
	lucraClient := lucra.NewClient(cfg.LucraAPIURL, cfg.LucraAPIKey)

	// Set up services
	userService := services.NewUserService(db)
	numberService := services.NewNumberService(db)
	bindingService := services.NewBindingService(db)
	lucraService := services.NewLucraService(db, lucraClient, bindingService)

	// Set up router
	router := api.NewRouter(db, userService, numberService, bindingService, lucraService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("database", cfg.DatabasePath).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

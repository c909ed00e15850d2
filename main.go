package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"telecare-server/internal/config"
	"telecare-server/internal/jobs"
	"telecare-server/internal/models"
	"telecare-server/internal/routes"
)

func main() {
	// Load environment variables; a missing .env is fine in production
	// where configuration comes from the environment directly.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file loaded:", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error loading config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)

	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	consultationSvc := routes.SetupRoutes(router, db, cfg, logger)

	// Background sweeper refunds and cancels pending consultations whose
	// scheduled time has passed without the doctor accepting.
	sweeper, err := jobs.StartSweeper(consultationSvc, cfg.PendingSweepSpec, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start pending sweeper")
	}
	defer sweeper.Stop()

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(serverAddr); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

func newLogger(environment string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if environment == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

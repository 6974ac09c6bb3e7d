package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/RevenueIntel/internal/config"
	"github.com/Alias1177/RevenueIntel/internal/database"
	"github.com/Alias1177/RevenueIntel/internal/ingest"
	"github.com/Alias1177/RevenueIntel/internal/server"
	"github.com/Alias1177/RevenueIntel/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, _ := zerolog.ParseLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)

	source, err := orderSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize order source")
	}

	srv := server.New(source, cfg)
	if err := srv.Run(cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}

// orderSource picks PostgreSQL when DB_HOST is configured, the CSV file
// otherwise. Both satisfy models.OrderSource; the handlers never know which
// one is behind them.
func orderSource(cfg *models.Config) (models.OrderSource, error) {
	if host := os.Getenv("DB_HOST"); host != "" {
		db, err := database.New(database.ConnectionParams{
			Host:     host,
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   os.Getenv("DB_NAME"),
			SSLMode:  os.Getenv("DB_SSLMODE"),
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("host", host).Msg("Serving orders from PostgreSQL")
		return db, nil
	}

	log.Info().Str("file", cfg.DataFile).Msg("Serving orders from CSV")
	return ingest.FileSource{Path: cfg.DataFile}, nil
}

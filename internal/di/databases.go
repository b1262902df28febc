package di

import (
	"fmt"

	"github.com/aristath/trendwatch/internal/config"
	"github.com/aristath/trendwatch/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the trendwatch database and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		Path: cfg.DatabasePath(),
		Name: database.NameTrendwatch,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize trendwatch database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate trendwatch database: %w", err)
	}

	log.Info().Str("path", db.Path()).Msg("Database initialized")

	return &Container{DB: db}, nil
}

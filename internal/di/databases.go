// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sellscalehood/backend/internal/config"
	"github.com/sellscalehood/backend/internal/database"
)

// InitializeDatabases opens portfolio.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// portfolio.db - Accounts and held positions
	portfolioDB, err := database.New(database.Config{
		Path:        cfg.DatabasePath(),
		Driver:      cfg.DBDriver,
		Name:        "portfolio",
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize portfolio database: %w", err)
	}
	container.PortfolioDB = portfolioDB

	if err := portfolioDB.Migrate(); err != nil {
		portfolioDB.Close()
		return nil, fmt.Errorf("failed to migrate portfolio database: %w", err)
	}

	log.Info().
		Str("path", portfolioDB.Path()).
		Str("driver", portfolioDB.Driver()).
		Msg("Database initialized")

	return container, nil
}

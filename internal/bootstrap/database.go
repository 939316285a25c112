package bootstrap

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/santidev10/brand-safety-audit/internal/config"
	"github.com/santidev10/brand-safety-audit/internal/database"
	"github.com/santidev10/brand-safety-audit/internal/logging"
)

// DatabaseComponents holds the configuration store connection and repositories.
type DatabaseComponents struct {
	DB       *sqlx.DB
	Keywords *database.KeywordRepository
	Cursors  *database.CursorRepository
}

// SetupDatabase connects to PostgreSQL and builds the repositories.
func SetupDatabase(ctx context.Context, cfg *config.Config, logger logging.Logger) (*DatabaseComponents, error) {
	logger.Info("connecting to PostgreSQL",
		logging.String("host", cfg.Database.Host),
		logging.Int("port", cfg.Database.Port),
		logging.String("database", cfg.Database.Database),
	)

	db, err := database.NewPostgresConnection(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &DatabaseComponents{
		DB:       db,
		Keywords: database.NewKeywordRepository(db),
		Cursors:  database.NewCursorRepository(db),
	}, nil
}

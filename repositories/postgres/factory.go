package postgres

import (
	"context"

	"github.com/upb/auth-gateway/config"
	"go.uber.org/zap"
)

// Open connects to PostgreSQL and creates the tables when AutoMigrate is set
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := NewDB(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

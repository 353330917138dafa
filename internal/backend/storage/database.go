package storage

import (
	"SiteWatch/internal/config"
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPostgres(ctx context.Context, cfg *config.DatabaseConfig, log *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDNS())
	if err != nil {
		log.Error("Failed to open connection to postgres")
		return nil, fmt.Errorf("failed to open postgres database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		log.Error("Failed to ping database")
		return nil, fmt.Errorf("failed to ping postgres database: %w", err)
	}

	log.Info("Successfully connected to postgres database")
	return pool, nil
}

// Package postgres implements the store interfaces against the platform
// database. All readers share one sqlx pool; schema ownership stays with
// the upstream ingestion pipeline.
package postgres

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/signalhouse/creatorstats/internal/config"
)

// Connect opens the platform database and applies the configured pool
// limits.
func Connect(cfg config.StoresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)

	return db, nil
}

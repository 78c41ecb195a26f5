package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gdugdh24/profile-service/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// NewPostgresDB creates a new PostgreSQL database connection using sqlx
func NewPostgresDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.GetDSN()

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Overrides are small rows keyed by user; a modest pool is enough.
	db.SetMaxIdleConns(5)
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

const overridesSchema = `
CREATE TABLE IF NOT EXISTS profile_overrides (
	user_key      TEXT PRIMARY KEY,
	gender        TEXT NOT NULL DEFAULT '',
	about         TEXT NOT NULL DEFAULT '',
	image_preview TEXT NOT NULL DEFAULT '',
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// MigrateOverrides creates the profile_overrides table if it is missing.
func MigrateOverrides(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, overridesSchema); err != nil {
		return fmt.Errorf("failed to create profile_overrides table: %w", err)
	}
	return nil
}

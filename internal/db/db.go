package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// RunMigrations creates the settlement archive table.
func (db *DB) RunMigrations(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS barrel_settlements (
			id BIGSERIAL PRIMARY KEY,
			label TEXT NOT NULL,
			payer TEXT NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			nominal_volume DOUBLE PRECISION NOT NULL,
			price_per_unit DOUBLE PRECISION NOT NULL,
			consumed JSONB NOT NULL,
			owed JSONB NOT NULL,
			opened_at TIMESTAMPTZ NOT NULL,
			closed_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_barrel_settlements_closed_at ON barrel_settlements(closed_at DESC);
	`)
	return err
}

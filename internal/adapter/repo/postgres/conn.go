package postgres

import (
	"context"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool creates a pgx connection pool from the provided DSN and returns it.
// The pool is configured with sane defaults for this application and emits
// query spans through otelpgx.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.ConnConfig.Tracer = otelpgx.NewTracer()
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// EnsureSchema creates the scored_results table when it does not exist.
// It is safe to call on every startup.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	q := `CREATE TABLE IF NOT EXISTS scored_results (
	run_id TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	fit_score DOUBLE PRECISION NOT NULL,
	rationale TEXT NOT NULL DEFAULT '',
	signals JSONB NOT NULL DEFAULT '{}'::jsonb,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	title_canonical TEXT NOT NULL DEFAULT '',
	industry_canonical TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (run_id, candidate_id)
)`
	_, err := pool.Exec(ctx, q)
	return err
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// applicationName tags every session so catalogue queries are easy to spot
// in pg_stat_activity.
const applicationName = "reproj"

// DB wraps the pgx pool that serves the CRS catalogue.
type DB struct {
	Pool *pgxpool.Pool
}

// New opens a pool and pings it. maxConns <= 0 keeps the pgxpool default.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["application_name"]; !ok {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// ErrNoPostGIS is returned when the database lacks the postgis extension and
// therefore has no spatial_ref_sys table.
var ErrNoPostGIS = errors.New("postgis extension not installed")

// PostGISVersion reports the installed postgis extension version.
func (db *DB) PostGISVersion(ctx context.Context) (string, error) {
	var v string
	err := db.Pool.QueryRow(ctx, `SELECT extversion FROM pg_extension WHERE extname = 'postgis'`).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNoPostGIS
	}
	if err != nil {
		return "", fmt.Errorf("postgis version: %w", err)
	}
	return v, nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Stat exposes pool statistics for the metrics gauges.
func (db *DB) Stat() *pgxpool.Stat {
	return db.Pool.Stat()
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Package store owns the PostgreSQL connection pool and the transaction
// helper the order workflow runs inside.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// Config describes the pool.
type Config struct {
	URL      string
	MaxConns int32
	MinConns int32
}

// DB is the process-wide store handle. It is created once at bootstrap,
// passed to the components that need it and closed on shutdown.
type DB struct {
	pool *pgxpool.Pool
	sql  *sql.DB
}

// Open parses cfg, builds the pgx pool and verifies connectivity.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("store: database url is required")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("store: parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	poolConfig.ConnConfig.RuntimeParams["DateStyle"] = "ISO, YMD"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	return &DB{
		pool: pool,
		sql:  stdlib.OpenDBFromPool(pool),
	}, nil
}

// SQL returns the database/sql view of the pool. Every *sql.Tx drawn from
// it pins one pooled connection until commit or rollback.
func (db *DB) SQL() *sql.DB { return db.sql }

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Migrate creates the billing schema if it does not exist.
func (db *DB) Migrate(ctx context.Context) error {
	return Migrate(ctx, db.sql)
}

// Close releases the pool.
func (db *DB) Close() error {
	err := db.sql.Close()
	db.pool.Close()
	return err
}

// SQLState returns the PostgreSQL error code carried by err, or "".
func SQLState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PoolSettings tunes the connection pool
type PoolSettings struct {
	MaxConns         int32
	MaxConnIdleTime  time.Duration
	StatementTimeout time.Duration
	ApplicationName  string

	// ConnectTimeout bounds how long startup keeps retrying an unreachable database
	ConnectTimeout time.Duration
}

// DefaultPoolSettings suits a single bot process
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxConns:         10,
		MaxConnIdleTime:  5 * time.Minute,
		StatementTimeout: 10 * time.Second,
		ApplicationName:  "predictor",
		ConnectTimeout:   30 * time.Second,
	}
}

// DB wraps the pgx pool shared by every repository
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool with the default settings
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	return NewConnectionWithSettings(ctx, databaseURL, DefaultPoolSettings())
}

// NewConnectionWithSettings opens a pool and waits for the first successful ping,
// retrying with exponential backoff while the database is still starting
func NewConnectionWithSettings(ctx context.Context, databaseURL string, settings PoolSettings) (*DB, error) {
	config, err := poolConfig(databaseURL, settings)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = settings.ConnectTimeout

	attempt := 0
	ping := func() error {
		attempt++
		if err := pool.Ping(ctx); err != nil {
			log.WithField("attempt", attempt).WithError(err).Warn("Database not reachable yet")
			return err
		}
		return nil
	}
	if err := backoff.Retry(ping, backoff.WithContext(retry, ctx)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}

	return &DB{Pool: pool}, nil
}

// poolConfig applies settings on top of the parsed URL. Sessions run in UTC because
// deadlines are compared against NOW() in SQL.
func poolConfig(databaseURL string, settings PoolSettings) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	params := config.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	if settings.StatementTimeout > 0 {
		params["statement_timeout"] = fmt.Sprintf("%d", settings.StatementTimeout.Milliseconds())
	}
	if settings.ApplicationName != "" {
		params["application_name"] = settings.ApplicationName
	}
	if settings.MaxConns > 0 {
		config.MaxConns = settings.MaxConns
	}
	if settings.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = settings.MaxConnIdleTime
	}

	return config, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// Package db provides PostgreSQL access for the event dedup engine.
//
// This package contains:
//   - DB: Connection pool and query interface wrapper
//   - The three candidate query shapes used by the strategy cascade
//   - Duplicate group listing and delete-by-id for the cleanup job
//   - Migration support via goose
//
// Every query runs under a bounded timeout; a query failure always surfaces
// as a hard error so it can never be mistaken for "no duplicates".
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	apperrors "github.com/yakimafinds/event-dedup/internal/core/errors"
	"github.com/yakimafinds/event-dedup/migrations"
)

// DB wraps a PostgreSQL connection pool and provides the engine's
// candidate queries and cleanup primitives.
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zerolog.Logger

	queryTimeout time.Duration
}

// Options configures the connection pool and per-query behavior.
type Options struct {
	MaxConns          int32
	MinConns          int32
	MaxConnIdleTime   time.Duration
	MaxConnLifetime   time.Duration
	HealthCheckPeriod time.Duration

	// QueryTimeout bounds every candidate query; expiry surfaces as a
	// hard error to the caller.
	QueryTimeout time.Duration
}

// DefaultOptions returns sensible default pool configuration.
func DefaultOptions() Options {
	return Options{
		MaxConns:          defaultMaxConns,
		MinConns:          defaultMinConns,
		MaxConnIdleTime:   defaultMaxConnIdleTime,
		MaxConnLifetime:   defaultMaxConnLifetime,
		HealthCheckPeriod: defaultHealthCheckPeriod,
		QueryTimeout:      defaultQueryTimeout,
	}
}

// New creates a new database connection with default options.
func New(ctx context.Context, dsn string, logger *zerolog.Logger) (*DB, error) {
	return NewWithOptions(ctx, dsn, DefaultOptions(), logger)
}

// NewWithOptions creates a new database connection with custom options.
func NewWithOptions(ctx context.Context, dsn string, opts Options, logger *zerolog.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	applyPoolOptions(config, opts)

	db, err := connectWithRetries(ctx, config, logger)
	if err != nil {
		return nil, err
	}

	db.queryTimeout = opts.QueryTimeout
	if db.queryTimeout <= 0 {
		db.queryTimeout = defaultQueryTimeout
	}

	return db, nil
}

// applyPoolOptions applies non-zero pool options to the config.
func applyPoolOptions(config *pgxpool.Config, opts Options) {
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}

	if opts.MinConns > 0 {
		config.MinConns = opts.MinConns
	}

	if opts.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = opts.MaxConnIdleTime
	}

	if opts.MaxConnLifetime > 0 {
		config.MaxConnLifetime = opts.MaxConnLifetime
	}

	if opts.HealthCheckPeriod > 0 {
		config.HealthCheckPeriod = opts.HealthCheckPeriod
	}
}

// connectWithRetries attempts to connect to the database with retries.
func connectWithRetries(ctx context.Context, config *pgxpool.Config, logger *zerolog.Logger) (*DB, error) {
	var pool *pgxpool.Pool

	var err error

	for i := 0; i < maxConnectionRetries; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &DB{Pool: pool, Logger: logger}, nil
			}
		}

		if pool != nil {
			pool.Close()
		}

		time.Sleep(ConnectionRetrySleep)
	}

	return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}

const migrationLockID = 1000

type gooseLogger struct {
	logger *zerolog.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatal().Msgf(format, v...)
}

func (l *gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info().Msgf(format, v...)
}

// Migrate runs database migrations using goose.
// It acquires an advisory lock to ensure only one migration runs at a time
// across multiple instances.
func (db *DB) Migrate(ctx context.Context) error {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("acquire advisory lock: %w", err)
	}

	defer func() {
		//nolint:errcheck // advisory unlock in defer is best-effort, lock released on connection close anyway
		_, _ = conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", migrationLockID)
	}()

	dbSQL := stdlib.OpenDB(*db.Pool.Config().ConnConfig)

	defer func() {
		_ = dbSQL.Close()
	}()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(&gooseLogger{logger: db.Logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Up(dbSQL, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// queryCtx derives a bounded context for a single store query.
func (db *DB) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.queryTimeout)
}

// queryErr tags a failed candidate query so callers can recognize it with
// errors.Is(err, apperrors.ErrQueryFailed).
func queryErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperrors.ErrQueryFailed, err)
}

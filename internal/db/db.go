package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"giphygetter/migrations"
)

// connectAttempts is the number of connection attempts made by Connect
// before giving up with ErrStoreUnavailable.
const connectAttempts = 5

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Connect opens the database, retrying while it comes up. Attempt i waits
// i*backoff before dialing, so the default backoff of one second mirrors a
// 0s, 1s, 2s, 3s, 4s schedule. After the last failed attempt it returns an
// error wrapping ErrStoreUnavailable.
func Connect(ctx context.Context, connString string, backoff time.Duration) (*DB, error) {
	return connectWithRetry(ctx, backoff, func(ctx context.Context) (*DB, error) {
		return New(ctx, connString)
	})
}

func connectWithRetry(ctx context.Context, backoff time.Duration, dial func(context.Context) (*DB, error)) (*DB, error) {
	var lastErr error
	for attempt := 0; attempt < connectAttempts; attempt++ {
		if wait := time.Duration(attempt) * backoff; wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, ctx.Err())
			case <-timer.C:
			}
		}

		database, err := dial(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().Int("attempt", attempt+1).Msg("database connection established")
			}
			return database, nil
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", connectAttempts).
			Msg("database connection failed")
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrStoreUnavailable, connectAttempts, lastErr)
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

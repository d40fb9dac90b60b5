package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/jdevries/crosslister/pkg/types"
)

const defaultPoolSize = 4

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, poolSize int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}
	cfg.MaxConns = int32(poolSize)

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// StartRun records the beginning of a dispatch run.
func (s *PostgresStore) StartRun(ctx context.Context, runID string, listings int) error {
	args := pgx.NamedArgs{
		"id":       runID,
		"listings": listings,
	}
	if _, err := s.pool.Exec(ctx, queryStartRun, args); err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// CompleteRun records the totals for a finished run.
func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, successes, failures int) error {
	args := pgx.NamedArgs{
		"id":        runID,
		"successes": successes,
		"failures":  failures,
	}
	if _, err := s.pool.Exec(ctx, queryCompleteRun, args); err != nil {
		return fmt.Errorf("recording run completion: %w", err)
	}
	return nil
}

// RecordOutcome inserts one posting outcome and fills in its generated
// fields.
func (s *PostgresStore) RecordOutcome(ctx context.Context, o *Outcome) error {
	args := pgx.NamedArgs{
		"run_id":      o.RunID,
		"identifier":  o.Identifier,
		"platform":    string(o.Platform),
		"outcome":     o.Outcome,
		"listing_url": o.ListingURL,
		"reason":      o.Reason,
	}
	err := s.pool.QueryRow(ctx, queryRecordOutcome, args).Scan(&o.ID, &o.PostedAt)
	if err != nil {
		return fmt.Errorf("recording outcome: %w", err)
	}
	return nil
}

// ListOutcomes queries posting outcomes with optional filters.
func (s *PostgresStore) ListOutcomes(ctx context.Context, q *OutcomeQuery) ([]Outcome, error) {
	sql, args := q.ToSQL()

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		var platform string
		err := rows.Scan(
			&o.ID, &o.RunID, &o.Identifier, &platform, &o.Outcome,
			&o.ListingURL, &o.Reason, &o.PostedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Platform = domain.Platform(platform)
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	return outcomes, nil
}

// LastSuccessURL returns the newest success URL for a listing on a platform.
func (s *PostgresStore) LastSuccessURL(
	ctx context.Context,
	identifier string,
	platform domain.Platform,
) (string, error) {
	var url string
	err := s.pool.QueryRow(ctx, queryLastSuccessURL, identifier, string(platform)).Scan(&url)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying last success: %w", err)
	}
	return url, nil
}

// Package store defines the posting-history datastore. The dispatcher
// depends on the Store interface, never on concrete implementations, so the
// store can be disabled entirely without touching posting logic.
package store

import (
	"context"
	"errors"
	"time"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Run is one dispatch run over a set of listings.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Listings   int
	Successes  int
	Failures   int
}

// Outcome is the result of one posting attempt.
type Outcome struct {
	ID         string
	RunID      string
	Identifier string
	Platform   domain.Platform
	Outcome    string
	ListingURL string
	Reason     string
	PostedAt   time.Time
}

// OutcomeQuery defines optional filters for outcome queries.
type OutcomeQuery struct {
	Identifier *string
	Platform   *domain.Platform
	Outcome    *string
	Limit      int // default 50
	Offset     int
}

// Store defines all posting-history operations.
type Store interface {
	// Runs
	StartRun(ctx context.Context, runID string, listings int) error
	CompleteRun(ctx context.Context, runID string, successes, failures int) error

	// Outcomes
	RecordOutcome(ctx context.Context, o *Outcome) error
	ListOutcomes(ctx context.Context, q *OutcomeQuery) ([]Outcome, error)
	// LastSuccessURL returns the most recent success URL for a listing on a
	// platform, or ErrNotFound when the listing was never posted there.
	LastSuccessURL(ctx context.Context, identifier string, platform domain.Platform) (string, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error

	Close()
}

package store

import (
	"context"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// NoopStore is the Store used when posting history is disabled. Every write
// succeeds silently and every read comes back empty.
type NoopStore struct{}

var _ Store = (*NoopStore)(nil)

func (NoopStore) StartRun(context.Context, string, int) error         { return nil }
func (NoopStore) CompleteRun(context.Context, string, int, int) error { return nil }
func (NoopStore) RecordOutcome(context.Context, *Outcome) error       { return nil }

func (NoopStore) ListOutcomes(context.Context, *OutcomeQuery) ([]Outcome, error) {
	return nil, nil
}

func (NoopStore) LastSuccessURL(context.Context, string, domain.Platform) (string, error) {
	return "", ErrNotFound
}

func (NoopStore) Migrate(context.Context) error { return nil }
func (NoopStore) Ping(context.Context) error    { return nil }
func (NoopStore) Close()                        {}

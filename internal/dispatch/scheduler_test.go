package dispatch_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/crosslister/internal/dispatch"
	domain "github.com/jdevries/crosslister/pkg/types"
)

func TestNewScheduler(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("https://example.com/1", nil),
		dispatch.WithOutput(&bytes.Buffer{}),
	)

	load := func() ([]*domain.ListingRecord, error) {
		return []*domain.ListingRecord{validListing(t)}, nil
	}

	s, err := dispatch.NewScheduler(d, load, time.Hour, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 1)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("https://example.com/1", nil),
		dispatch.WithOutput(&bytes.Buffer{}),
	)

	load := func() ([]*domain.ListingRecord, error) {
		return nil, nil
	}

	s, err := dispatch.NewScheduler(d, load, time.Hour, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, err)

	s.Start()
	stopped := s.Stop()

	select {
	case <-stopped.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
	assert.Equal(t, context.Canceled, stopped.Err())
}

package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdevries/crosslister/internal/credentials"
	"github.com/jdevries/crosslister/internal/dispatch"
	"github.com/jdevries/crosslister/internal/store"
	"github.com/jdevries/crosslister/pkg/listing"
	"github.com/jdevries/crosslister/pkg/rules"
	domain "github.com/jdevries/crosslister/pkg/types"
)

const testCategoryMap = `{
	"shoes": {
		"marktplaats": "Kleding | Schoenen",
		"tweedehands": "Kleding",
		"facebook": "Clothing & Shoes",
		"vinted": "Schoenen",
		"keywords": ["sneakers"]
	}
}`

func testCategories(t *testing.T) *rules.CategoryMap {
	t.Helper()
	cm, err := rules.ParseCategoryMap(strings.NewReader(testCategoryMap))
	require.NoError(t, err)
	return cm
}

func testCredentials(platforms ...domain.Platform) credentials.Set {
	set := make(credentials.Set, len(platforms))
	for _, p := range platforms {
		set[p] = domain.Credentials{Username: "user@example.com", Password: "secret"}
	}
	return set
}

// validListing builds a record that passes preparation for every platform
// that does not need extra fields.
func validListing(t *testing.T) *domain.ListingRecord {
	t.Helper()
	row := listing.RawRow{
		{Key: "id", Value: "lst-1"},
		{Key: "title", Value: "Nike Air Max"},
		{Key: "price", Value: "45,50"},
		{Key: "description", Value: "Barely worn, size 42, no box"},
		{Key: "condition", Value: "zo goed als nieuw"},
		{Key: "location_country", Value: "nl"},
		{Key: "location_postcode", Value: "1011ab"},
		{Key: "location_city", Value: "Amsterdam"},
		{Key: "images", Value: "a.jpg|b.jpg"},
		{Key: "category_hint", Value: "shoes"},
	}
	return listing.BuildListing(1, row, "/imgs", domain.Platforms)
}

// invalidListing has no price, so preparation fails on every platform.
func invalidListing(t *testing.T) *domain.ListingRecord {
	t.Helper()
	row := listing.RawRow{
		{Key: "id", Value: "lst-broken"},
		{Key: "title", Value: "Mystery box"},
		{Key: "description", Value: "Contents unknown"},
		{Key: "condition", Value: "goed"},
		{Key: "location_country", Value: "nl"},
		{Key: "location_postcode", Value: "1011ab"},
		{Key: "location_city", Value: "Amsterdam"},
		{Key: "images", Value: "a.jpg"},
		{Key: "category_hint", Value: "shoes"},
	}
	return listing.BuildListing(2, row, "/imgs", domain.Platforms)
}

func stubPost(url string, err error) dispatch.PostFunc {
	return func(context.Context, domain.Platform, domain.Credentials, *domain.Payload) (string, error) {
		return url, err
	}
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("https://www.marktplaats.nl/a/123", nil),
		dispatch.WithOutput(&out),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	outcome, ok := results.Outcome("lst-1", domain.PlatformMarktplaats)
	require.True(t, ok)
	assert.Equal(t, "https://www.marktplaats.nl/a/123", outcome)
	assert.Equal(t, 1, results.Successes())
	assert.Equal(t, 0, results.Failures())
	assert.NotEmpty(t, results.RunID())
	assert.Contains(t, out.String(), "[SUCCESS] lst-1 -> marktplaats: https://www.marktplaats.nl/a/123")
}

func TestRun_MissingCredentials(t *testing.T) {
	t.Parallel()

	var posted atomic.Int32
	post := func(context.Context, domain.Platform, domain.Credentials, *domain.Payload) (string, error) {
		posted.Add(1)
		return "https://example.com", nil
	}

	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		credentials.Set{},
		testCategories(t),
		post,
		dispatch.WithOutput(&out),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	outcome, ok := results.Outcome("lst-1", domain.PlatformMarktplaats)
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeMissingCredentials, outcome)
	assert.Equal(t, 1, results.Failures())
	assert.Zero(t, posted.Load())
	assert.Contains(t, out.String(), "[ERROR] lst-1 -> marktplaats: missing credentials")
}

func TestRun_InvalidListing(t *testing.T) {
	t.Parallel()

	var posted atomic.Int32
	post := func(context.Context, domain.Platform, domain.Credentials, *domain.Payload) (string, error) {
		posted.Add(1)
		return "https://example.com", nil
	}

	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		post,
		dispatch.WithOutput(&out),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{invalidListing(t)})
	require.NoError(t, err)

	outcome, ok := results.Outcome("lst-broken", domain.PlatformMarktplaats)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(outcome, domain.OutcomeInvalidPrefix))
	assert.Contains(t, outcome, "price")
	assert.Equal(t, 1, results.Failures())
	assert.Zero(t, posted.Load())
	assert.Contains(t, out.String(), "[ERROR] lst-broken -> marktplaats:")
}

func TestRun_PostError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("", errors.New("captcha wall")),
		dispatch.WithOutput(&out),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	outcome, ok := results.Outcome("lst-1", domain.PlatformMarktplaats)
	require.True(t, ok)
	assert.Equal(t, domain.OutcomeError, outcome)
	assert.Equal(t, 1, results.Failures())
	assert.Contains(t, out.String(), "[ERROR] lst-1 -> marktplaats: captcha wall")
}

func TestRun_OnePlatformFailureDoesNotAffectOthers(t *testing.T) {
	t.Parallel()

	post := func(_ context.Context, platform domain.Platform, _ domain.Credentials, _ *domain.Payload) (string, error) {
		if platform == domain.PlatformTweedehands {
			return "", errors.New("session expired")
		}
		return "https://" + string(platform) + ".example.com/1", nil
	}

	platforms := []domain.Platform{domain.PlatformMarktplaats, domain.PlatformTweedehands}
	d := dispatch.NewDispatcher(
		platforms,
		testCredentials(platforms...),
		testCategories(t),
		post,
		dispatch.WithOutput(&bytes.Buffer{}),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	success, _ := results.Outcome("lst-1", domain.PlatformMarktplaats)
	assert.Equal(t, "https://marktplaats.example.com/1", success)
	failure, _ := results.Outcome("lst-1", domain.PlatformTweedehands)
	assert.Equal(t, domain.OutcomeError, failure)
	assert.Equal(t, 1, results.Successes())
	assert.Equal(t, 1, results.Failures())
}

func TestRun_BatchesRespectMaxParallel(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	inFlight, peak := 0, 0
	post := func(context.Context, domain.Platform, domain.Credentials, *domain.Payload) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return "https://example.com/1", nil
	}

	platforms := []domain.Platform{domain.PlatformMarktplaats, domain.PlatformTweedehands}
	d := dispatch.NewDispatcher(
		platforms,
		testCredentials(platforms...),
		testCategories(t),
		post,
		dispatch.WithOutput(&bytes.Buffer{}),
		dispatch.WithMaxParallel(1),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	assert.Equal(t, 2, results.Successes())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, peak)
}

// recordingStore captures store calls so run bookkeeping can be asserted
// without a database.
type recordingStore struct {
	mu        sync.Mutex
	started   []string
	completed []string
	outcomes  []store.Outcome
}

func (s *recordingStore) StartRun(_ context.Context, runID string, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, runID)
	return nil
}

func (s *recordingStore) CompleteRun(_ context.Context, runID string, _, _ int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = append(s.completed, runID)
	return nil
}

func (s *recordingStore) RecordOutcome(_ context.Context, o *store.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcomes = append(s.outcomes, *o)
	return nil
}

func (s *recordingStore) ListOutcomes(context.Context, *store.OutcomeQuery) ([]store.Outcome, error) {
	return nil, nil
}

func (s *recordingStore) LastSuccessURL(context.Context, string, domain.Platform) (string, error) {
	return "", store.ErrNotFound
}

func (s *recordingStore) Migrate(context.Context) error { return nil }
func (s *recordingStore) Ping(context.Context) error    { return nil }
func (s *recordingStore) Close()                        {}

func TestRun_RecordsHistory(t *testing.T) {
	t.Parallel()

	db := &recordingStore{}
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("https://www.marktplaats.nl/a/123", nil),
		dispatch.WithOutput(&bytes.Buffer{}),
		dispatch.WithStore(db),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	db.mu.Lock()
	defer db.mu.Unlock()
	require.Len(t, db.started, 1)
	assert.Equal(t, results.RunID(), db.started[0])
	require.Len(t, db.completed, 1)
	require.Len(t, db.outcomes, 1)
	assert.Equal(t, "lst-1", db.outcomes[0].Identifier)
	assert.Equal(t, "success", db.outcomes[0].Outcome)
	assert.Equal(t, "https://www.marktplaats.nl/a/123", db.outcomes[0].ListingURL)
	assert.Equal(t, results.RunID(), db.outcomes[0].RunID)
}

// seededStore reports a prior success URL for every listing/platform pair.
type seededStore struct {
	recordingStore
	url string
}

func (s *seededStore) LastSuccessURL(context.Context, string, domain.Platform) (string, error) {
	return s.url, nil
}

func TestRun_SkipsAlreadyPosted(t *testing.T) {
	t.Parallel()

	var posted atomic.Int32
	db := &seededStore{url: "https://www.marktplaats.nl/a/previous"}
	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		func(context.Context, domain.Platform, domain.Credentials, *domain.Payload) (string, error) {
			posted.Add(1)
			return "https://www.marktplaats.nl/a/new", nil
		},
		dispatch.WithOutput(&out),
		dispatch.WithStore(db),
	)

	results, err := d.Run(context.Background(), []*domain.ListingRecord{validListing(t)})
	require.NoError(t, err)

	assert.Equal(t, int32(0), posted.Load())
	outcome, _ := results.Outcome("lst-1", domain.PlatformMarktplaats)
	assert.Equal(t, "https://www.marktplaats.nl/a/previous", outcome)
	assert.Equal(t, 1, results.Successes())
	assert.Contains(t, out.String(),
		"[OK] lst-1 -> marktplaats: already posted: https://www.marktplaats.nl/a/previous")

	db.mu.Lock()
	defer db.mu.Unlock()
	require.Len(t, db.outcomes, 1)
	assert.Equal(t, "skipped", db.outcomes[0].Outcome)
	assert.Equal(t, "https://www.marktplaats.nl/a/previous", db.outcomes[0].ListingURL)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	d := dispatch.NewDispatcher(
		[]domain.Platform{domain.PlatformMarktplaats},
		testCredentials(domain.PlatformMarktplaats),
		testCategories(t),
		stubPost("", errors.New("check must not post")),
		dispatch.WithOutput(&out),
	)

	results := d.Check([]*domain.ListingRecord{validListing(t), invalidListing(t)})

	ok, _ := results.Outcome("lst-1", domain.PlatformMarktplaats)
	assert.Equal(t, "OK", ok)
	broken, _ := results.Outcome("lst-broken", domain.PlatformMarktplaats)
	assert.True(t, strings.HasPrefix(broken, domain.OutcomeInvalidPrefix))
	assert.Contains(t, out.String(), "[OK] lst-1 -> marktplaats")
	assert.Contains(t, out.String(), "[ERROR] lst-broken -> marktplaats:")
}

func TestResults_WriteJSON(t *testing.T) {
	t.Parallel()

	results := dispatch.NewResults("run-1")
	results.Record("lst-1", domain.PlatformMarktplaats, "https://www.marktplaats.nl/a/123", true)
	results.Record("lst-1", domain.PlatformVinted, domain.OutcomeMissingCredentials, false)

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, results.WriteJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "https://www.marktplaats.nl/a/123", decoded["lst-1"]["marktplaats"])
	assert.Equal(t, domain.OutcomeMissingCredentials, decoded["lst-1"]["vinted"])
}

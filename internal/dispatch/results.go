package dispatch

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// Results collects per-listing, per-platform outcomes for one run. Outcome
// values are either the created listing URL or one of the failure markers
// ("MISSING_CREDENTIALS", "INVALID: <reason>", "ERROR").
type Results struct {
	mu        sync.Mutex
	runID     string
	byListing map[string]map[domain.Platform]string
	urls      []string
	successes int
	failures  int
}

// NewResults creates an empty result set for a run.
func NewResults(runID string) *Results {
	return &Results{
		runID:     runID,
		byListing: make(map[string]map[domain.Platform]string),
	}
}

// RunID returns the run identifier these results belong to.
func (r *Results) RunID() string {
	return r.runID
}

// Record stores one outcome. success marks the attempt as a success for the
// run totals.
func (r *Results) Record(identifier string, platform domain.Platform, outcome string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byListing[identifier] == nil {
		r.byListing[identifier] = make(map[domain.Platform]string)
	}
	r.byListing[identifier][platform] = outcome
	if success {
		r.successes++
		r.urls = append(r.urls, outcome)
	} else {
		r.failures++
	}
}

// PostedURLs returns the outcomes recorded as successes, in record order.
func (r *Results) PostedURLs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	urls := make([]string, len(r.urls))
	copy(urls, r.urls)
	return urls
}

// Outcome returns the recorded outcome for a listing on a platform.
func (r *Results) Outcome(identifier string, platform domain.Platform) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	outcome, ok := r.byListing[identifier][platform]
	return outcome, ok
}

// Successes returns the number of successful posts.
func (r *Results) Successes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.successes
}

// Failures returns the number of failed posts.
func (r *Results) Failures() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failures
}

// WriteJSON saves the outcome map as indented JSON.
func (r *Results) WriteJSON(path string) error {
	r.mu.Lock()
	data, err := json.MarshalIndent(r.byListing, "", "  ")
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // report file
		return fmt.Errorf("writing results file: %w", err)
	}
	return nil
}

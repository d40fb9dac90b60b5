// Package dispatch orchestrates posting listings across platforms: credential
// checks, payload preparation, batched concurrent posting, and result
// collection. Failures on one platform never block the others.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdevries/crosslister/internal/browser"
	"github.com/jdevries/crosslister/internal/credentials"
	"github.com/jdevries/crosslister/internal/metrics"
	"github.com/jdevries/crosslister/internal/notify"
	"github.com/jdevries/crosslister/internal/poster"
	"github.com/jdevries/crosslister/internal/store"
	"github.com/jdevries/crosslister/pkg/logger"
	"github.com/jdevries/crosslister/pkg/prepare"
	"github.com/jdevries/crosslister/pkg/rules"
	domain "github.com/jdevries/crosslister/pkg/types"
)

// PostFunc posts one prepared payload and returns the created listing URL.
type PostFunc func(
	ctx context.Context,
	platform domain.Platform,
	creds domain.Credentials,
	payload *domain.Payload,
) (string, error)

// BrowserPostFunc returns a PostFunc that launches a fresh Chrome session
// per posting attempt. A crashed browser on one platform cannot take the
// other attempts down with it.
func BrowserPostFunc(cfg browser.Config, cookiesDir string) PostFunc {
	return func(
		ctx context.Context,
		platform domain.Platform,
		creds domain.Credentials,
		payload *domain.Payload,
	) (string, error) {
		p, err := poster.New(platform, creds, cookiesDir)
		if err != nil {
			return "", err
		}
		sess, err := browser.NewSession(ctx, cfg)
		if err != nil {
			return "", fmt.Errorf("launching browser for %s: %w", platform, err)
		}
		defer sess.Close()
		return p.PostListing(sess.Context(), payload)
	}
}

// Dispatcher runs listings through preparation and posting.
type Dispatcher struct {
	platforms  []domain.Platform
	creds      credentials.Set
	categories *rules.CategoryMap
	post       PostFunc
	db         store.Store
	log        *slog.Logger
	out        io.Writer

	maxParallel int
	delayMin    time.Duration
	delayMax    time.Duration
	limiter     *rate.Limiter
	notifier    notify.Notifier
}

// NewDispatcher creates a Dispatcher with injected dependencies.
func NewDispatcher(
	platforms []domain.Platform,
	creds credentials.Set,
	categories *rules.CategoryMap,
	post PostFunc,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		platforms:   platforms,
		creds:       creds,
		categories:  categories,
		post:        post,
		db:          store.NoopStore{},
		log:         slog.Default(),
		out:         os.Stdout,
		maxParallel: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// WithStore sets the posting-history store.
func WithStore(s store.Store) Option {
	return func(d *Dispatcher) {
		d.db = s
	}
}

// WithOutput redirects the per-post console lines.
func WithOutput(w io.Writer) Option {
	return func(d *Dispatcher) {
		d.out = w
	}
}

// WithMaxParallel caps how many platforms post concurrently per listing.
func WithMaxParallel(n int) Option {
	return func(d *Dispatcher) {
		d.maxParallel = max(n, 1)
	}
}

// WithDelayRange sets the random pause after each posting attempt.
func WithDelayRange(minDelay, maxDelay time.Duration) Option {
	return func(d *Dispatcher) {
		d.delayMin = minDelay
		d.delayMax = maxDelay
	}
}

// WithNotifier sets a run summary notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(d *Dispatcher) {
		d.notifier = n
	}
}

// WithRateLimit throttles posting attempts across all platforms.
func WithRateLimit(perMinute float64, burst int) Option {
	return func(d *Dispatcher) {
		d.limiter = rate.NewLimiter(rate.Limit(perMinute/60.0), burst)
	}
}

// readyPost is one prepared payload waiting to be posted.
type readyPost struct {
	platform domain.Platform
	creds    domain.Credentials
	payload  *domain.Payload
}

// Run processes every listing against every configured platform and returns
// the collected outcomes. The error return covers context cancellation only;
// per-post failures land in the results.
func (d *Dispatcher) Run(ctx context.Context, listings []*domain.ListingRecord) (*Results, error) {
	start := time.Now()
	log, runID := logger.ForRun(d.log)

	metrics.RunsTotal.Inc()
	defer func() {
		metrics.RunDuration.Observe(time.Since(start).Seconds())
	}()

	results := NewResults(runID)
	if err := d.db.StartRun(ctx, runID, len(listings)); err != nil {
		log.Error("recording run start failed", "error", err)
	}

	for _, listing := range listings {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		d.processListing(ctx, log, listing, results)
	}

	if err := d.db.CompleteRun(ctx, runID, results.Successes(), results.Failures()); err != nil {
		log.Error("recording run completion failed", "error", err)
	}

	log.Info("run complete",
		"listings", len(listings),
		"successes", results.Successes(),
		"failures", results.Failures(),
	)

	if d.notifier != nil {
		summary := &notify.RunSummary{
			RunID:      runID,
			Listings:   len(listings),
			Successes:  results.Successes(),
			Failures:   results.Failures(),
			Duration:   time.Since(start),
			PostedURLs: results.PostedURLs(),
		}
		if err := d.notifier.SendRunSummary(ctx, summary); err != nil {
			log.Error("sending run summary failed", "error", err)
		}
	}
	return results, nil
}

func (d *Dispatcher) processListing(
	ctx context.Context,
	log *slog.Logger,
	listing *domain.ListingRecord,
	results *Results,
) {
	log.Info("processing listing", "identifier", listing.Identifier)

	// Preparation runs sequentially: the checks are cheap and every skip or
	// validation failure is final for the listing/platform pair.
	var ready []readyPost
	for _, platform := range d.platforms {
		payload := listing.ForPlatform(platform)

		prior, err := d.db.LastSuccessURL(ctx, listing.Identifier, platform)
		if err == nil {
			log.Info("already posted, skipping",
				"identifier", listing.Identifier,
				"platform", platform,
				"url", prior,
			)
			metrics.PostAttemptsTotal.WithLabelValues(string(platform), metrics.OutcomeSkipped).Inc()
			results.Record(listing.Identifier, platform, prior, true)
			d.recordOutcome(ctx, log, results.RunID(), &store.Outcome{
				Identifier: listing.Identifier,
				Platform:   platform,
				Outcome:    metrics.OutcomeSkipped,
				ListingURL: prior,
			})
			fmt.Fprintf(d.out, "[OK] %s -> %s: already posted: %s\n", listing.Identifier, platform, prior)
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			log.Error("checking posting history failed",
				"identifier", listing.Identifier,
				"platform", platform,
				"error", err,
			)
		}

		creds, ok := d.creds.For(platform)
		if !ok {
			log.Error("missing credentials", "platform", platform)
			metrics.MissingCredentialsTotal.WithLabelValues(string(platform)).Inc()
			results.Record(listing.Identifier, platform, domain.OutcomeMissingCredentials, false)
			d.recordOutcome(ctx, log, results.RunID(), &store.Outcome{
				Identifier: listing.Identifier,
				Platform:   platform,
				Outcome:    "missing_credentials",
			})
			fmt.Fprintf(d.out, "[ERROR] %s -> %s: missing credentials\n", listing.Identifier, platform)
			continue
		}

		prepared, err := prepare.ForPlatform(payload, platform, d.categories)
		if err != nil {
			log.Error("listing invalid",
				"identifier", listing.Identifier,
				"platform", platform,
				"reason", err,
			)
			metrics.ValidationFailuresTotal.WithLabelValues(string(platform)).Inc()
			metrics.PostAttemptsTotal.WithLabelValues(string(platform), metrics.OutcomeInvalid).Inc()
			results.Record(listing.Identifier, platform, domain.OutcomeInvalidPrefix+err.Error(), false)
			d.recordOutcome(ctx, log, results.RunID(), &store.Outcome{
				Identifier: listing.Identifier,
				Platform:   platform,
				Outcome:    metrics.OutcomeInvalid,
				Reason:     err.Error(),
			})
			fmt.Fprintf(d.out, "[ERROR] %s -> %s: %s\n", listing.Identifier, platform, err)
			continue
		}

		ready = append(ready, readyPost{platform: platform, creds: creds, payload: prepared})
	}

	// Post in batches of maxParallel; each batch finishes before the next
	// starts.
	for i := 0; i < len(ready); i += d.maxParallel {
		batch := ready[i:min(i+d.maxParallel, len(ready))]

		var wg sync.WaitGroup
		for _, rp := range batch {
			wg.Add(1)
			go func(rp readyPost) {
				defer wg.Done()
				d.postOne(ctx, log, listing.Identifier, rp, results)
			}(rp)
		}
		wg.Wait()
	}
}

func (d *Dispatcher) postOne(
	ctx context.Context,
	log *slog.Logger,
	identifier string,
	rp readyPost,
	results *Results,
) {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			results.Record(identifier, rp.platform, domain.OutcomeError, false)
			return
		}
	}

	log.Info("posting", "identifier", identifier, "platform", rp.platform)
	start := time.Now()
	url, err := d.post(ctx, rp.platform, rp.creds, rp.payload)
	metrics.PostDuration.WithLabelValues(string(rp.platform)).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error("posting failed",
			"identifier", identifier,
			"platform", rp.platform,
			"error", err,
		)
		metrics.PostAttemptsTotal.WithLabelValues(string(rp.platform), metrics.OutcomeError).Inc()
		results.Record(identifier, rp.platform, domain.OutcomeError, false)
		d.recordOutcome(ctx, log, results.RunID(), &store.Outcome{
			Identifier: identifier,
			Platform:   rp.platform,
			Outcome:    metrics.OutcomeError,
			Reason:     err.Error(),
		})
		fmt.Fprintf(d.out, "[ERROR] %s -> %s: %v\n", identifier, rp.platform, err)
	} else {
		metrics.PostAttemptsTotal.WithLabelValues(string(rp.platform), metrics.OutcomeSuccess).Inc()
		results.Record(identifier, rp.platform, url, true)
		d.recordOutcome(ctx, log, results.RunID(), &store.Outcome{
			Identifier: identifier,
			Platform:   rp.platform,
			Outcome:    metrics.OutcomeSuccess,
			ListingURL: url,
		})
		fmt.Fprintf(d.out, "[SUCCESS] %s -> %s: %s\n", identifier, rp.platform, url)
	}

	d.pause(ctx)
}

// pause sleeps a random duration within the configured delay range.
func (d *Dispatcher) pause(ctx context.Context) {
	if d.delayMax <= 0 {
		return
	}
	span := d.delayMax - d.delayMin
	delay := d.delayMin
	if span > 0 {
		delay += time.Duration(rand.Int63n(int64(span))) //nolint:gosec // pacing jitter
	}
	select {
	case <-ctx.Done():
	case <-time.After(delay):
	}
}

func (d *Dispatcher) recordOutcome(
	ctx context.Context,
	log *slog.Logger,
	runID string,
	o *store.Outcome,
) {
	o.RunID = runID
	if err := d.db.RecordOutcome(ctx, o); err != nil {
		log.Error("recording outcome failed",
			"identifier", o.Identifier,
			"platform", o.Platform,
			"error", err,
		)
	}
}

// Check runs every listing through preparation only, without posting.
// Valid pairs get the outcome "OK"; invalid ones the usual INVALID marker.
func (d *Dispatcher) Check(listings []*domain.ListingRecord) *Results {
	results := NewResults("")
	for _, listing := range listings {
		for _, platform := range d.platforms {
			payload := listing.ForPlatform(platform)
			if _, err := prepare.ForPlatform(payload, platform, d.categories); err != nil {
				results.Record(listing.Identifier, platform, domain.OutcomeInvalidPrefix+err.Error(), false)
				fmt.Fprintf(d.out, "[ERROR] %s -> %s: %s\n", listing.Identifier, platform, err)
				continue
			}
			results.Record(listing.Identifier, platform, "OK", true)
			fmt.Fprintf(d.out, "[OK] %s -> %s\n", listing.Identifier, platform)
		}
	}
	return results
}

package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/jdevries/crosslister/pkg/types"
)

// LoadFunc reloads the listing set before each scheduled run, so edits to
// the input files between runs are picked up.
type LoadFunc func() ([]*domain.ListingRecord, error)

// Scheduler reruns the dispatcher on a fixed interval (watch mode).
type Scheduler struct {
	cron       *cron.Cron
	dispatcher *Dispatcher
	load       LoadFunc
	log        *slog.Logger
}

// NewScheduler creates a Scheduler that posts all listings every interval.
func NewScheduler(
	d *Dispatcher,
	load LoadFunc,
	interval time.Duration,
	log *slog.Logger,
) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:       c,
		dispatcher: d,
		load:       load,
		log:        log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

// Start begins running scheduled posting runs.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for a running post to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	s.log.Info("scheduled posting run starting")

	listings, err := s.load()
	if err != nil {
		s.log.Error("loading listings failed", "error", err)
		return
	}
	if len(listings) == 0 {
		s.log.Warn("no listings found, skipping run")
		return
	}

	if _, err := s.dispatcher.Run(ctx, listings); err != nil {
		s.log.Error("scheduled posting run failed", "error", err)
	}
}

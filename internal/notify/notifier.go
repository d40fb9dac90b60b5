// Package notify defines the notification interface and implementations
// for run summary delivery.
package notify

import (
	"context"
	"time"
)

// RunSummary contains the data needed to report one posting run.
type RunSummary struct {
	RunID     string
	Listings  int
	Successes int
	Failures  int
	Duration  time.Duration
	// PostedURLs holds up to a handful of created listing URLs, newest last.
	PostedURLs []string
}

// Notifier defines the interface for sending run summary notifications.
type Notifier interface {
	SendRunSummary(ctx context.Context, summary *RunSummary) error
}

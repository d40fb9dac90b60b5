package notify

import (
	"context"
	"log/slog"
)

// NoOpNotifier implements Notifier by logging discarded summaries. It is
// used when Discord (or another notification backend) is not configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards summaries with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// SendRunSummary logs and discards a run summary.
func (n *NoOpNotifier) SendRunSummary(_ context.Context, summary *RunSummary) error {
	n.log.Debug("run summary discarded (no backend configured)",
		"run_id", summary.RunID,
		"successes", summary.Successes,
		"failures", summary.Failures,
	)
	return nil
}

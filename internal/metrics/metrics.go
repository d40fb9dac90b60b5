// Package metrics defines Prometheus metrics for the crosslister.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "crosslister"

// Outcome label values for PostAttemptsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Listing pipeline metrics.
var (
	ListingsLoadedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listings_loaded_total",
		Help:      "Total number of listings loaded from input files.",
	})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of listings rejected during preparation.",
	}, []string{"platform"})
)

// Posting metrics.
var (
	PostAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "post_attempts_total",
		Help:      "Total number of posting attempts per platform and outcome.",
	}, []string{"platform", "outcome"})

	PostDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "post_duration_seconds",
		Help:      "Duration of posting attempts in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"platform"})

	MissingCredentialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "missing_credentials_total",
		Help:      "Total number of posts skipped for missing credentials.",
	}, []string{"platform"})
)

// Run metrics.
var (
	RunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total number of dispatch runs.",
	})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of full dispatch runs in seconds.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
)

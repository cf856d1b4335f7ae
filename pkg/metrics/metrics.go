package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsCreated counts submissions recorded by the intake pipeline,
	// labelled by whether a reviewer could be assigned (assigned|unassigned).
	SubmissionsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectorium_submissions_created_total",
			Help: "Total number of submissions created",
		},
		[]string{"assignment"},
	)

	// ReviewsCompleted counts submissions moved to a terminal review status.
	ReviewsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectorium_reviews_completed_total",
			Help: "Total number of completed reviews",
		},
	)

	// NotificationsEmitted counts workflow notifications by type and outcome
	// (ok|error). Emission is best effort, so errors are expected to appear
	// here without failing the primary operation.
	NotificationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lectorium_notifications_emitted_total",
			Help: "Total number of workflow notifications emitted",
		},
		[]string{"type", "result"},
	)

	// NotificationsSwept counts notifications removed by the retention sweeper.
	NotificationsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lectorium_notifications_swept_total",
			Help: "Total number of notifications deleted by retention sweeps",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lectorium_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

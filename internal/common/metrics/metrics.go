// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	BureauLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bureau_lookups_total",
			Help: "Total number of credit bureau lookups by outcome",
		},
		[]string{"outcome"}, // hit, miss, error, timeout
	)

	BureauLookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bureau_lookup_duration_seconds",
			Help: "Duration of credit bureau lookups in seconds",
		},
	)

	FactorDegradations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_factor_degradations_total",
			Help: "Total number of factor evaluations that degraded to zero contribution",
		},
		[]string{"factor"},
	)

	ScoresComputed = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_normalized_score",
			Help:    "Distribution of normalized scores produced by the engine",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

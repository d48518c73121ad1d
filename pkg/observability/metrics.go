package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the versioning engine
type Metrics struct {
	// Analysis metrics
	AnalysesTotal        *prometheus.CounterVec
	ChangesDetectedTotal *prometheus.CounterVec
	AnalysisDuration     prometheus.Histogram

	// Version management metrics
	BumpsTotal     *prometheus.CounterVec
	RollbacksTotal prometheus.Counter
	HistoryLength  prometheus.Gauge

	// Compatibility ledger metrics
	MatrixBuildsTotal   prometheus.Counter
	MatrixBuildDuration prometheus.Histogram
	MatrixCacheHits     prometheus.Counter
	MatrixCacheMisses   prometheus.Counter

	// Migration metrics
	MigrationsTotal    *prometheus.CounterVec
	MigrationSteps     prometheus.Histogram
	StepRollbacksTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contractver_analyses_total",
				Help: "Total number of contract change analyses",
			},
			[]string{"compatible"},
		),
		ChangesDetectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contractver_changes_detected_total",
				Help: "Total number of detected changes by impact",
			},
			[]string{"impact"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contractver_analysis_duration_seconds",
				Help:    "Contract analysis duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		BumpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contractver_bumps_total",
				Help: "Total number of version bumps by type and outcome",
			},
			[]string{"bump_type", "outcome"},
		),
		RollbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contractver_rollbacks_total",
				Help: "Total number of version rollbacks recorded",
			},
		),
		HistoryLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "contractver_history_entries",
				Help: "Number of entries in the version history",
			},
		),
		MatrixBuildsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contractver_matrix_builds_total",
				Help: "Total number of compatibility matrix builds",
			},
		),
		MatrixBuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contractver_matrix_build_duration_seconds",
				Help:    "Compatibility matrix build duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		MatrixCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contractver_matrix_cache_hits_total",
				Help: "Compatibility matrix cache hits",
			},
		),
		MatrixCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "contractver_matrix_cache_misses_total",
				Help: "Compatibility matrix cache misses",
			},
		),
		MigrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contractver_migrations_total",
				Help: "Total number of migration executions by outcome",
			},
			[]string{"outcome", "dry_run"},
		),
		MigrationSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "contractver_migration_steps",
				Help:    "Steps per executed migration path",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
		StepRollbacksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contractver_step_rollbacks_total",
				Help: "Total number of step rollbacks by outcome",
			},
			[]string{"outcome"},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.AnalysesTotal,
			m.ChangesDetectedTotal,
			m.AnalysisDuration,
			m.BumpsTotal,
			m.RollbacksTotal,
			m.HistoryLength,
			m.MatrixBuildsTotal,
			m.MatrixBuildDuration,
			m.MatrixCacheHits,
			m.MatrixCacheMisses,
			m.MigrationsTotal,
			m.MigrationSteps,
			m.StepRollbacksTotal,
		)
	}

	return m
}

// NopMetrics returns an unregistered metrics set. Useful in tests and for
// callers that do not expose a Prometheus registry.
func NopMetrics() *Metrics {
	return NewMetrics(nil)
}

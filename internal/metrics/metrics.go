// Package metrics exposes migration run statistics to Prometheus.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bangtanmom/contentsync/internal/config"
	"github.com/bangtanmom/contentsync/internal/etl"
	"github.com/bangtanmom/contentsync/pkg/models"
)

// Run outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeConfigError   = "config_error"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Recorder collects migration run metrics. It implements etl.Observer.
type Recorder struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	records  *prometheus.CounterVec
}

// New registers the migration metrics with registry.
func New(registry prometheus.Registerer) *Recorder {
	factory := promauto.With(registry)
	return &Recorder{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_runs_total",
				Help: "Number of migration runs by outcome and mode.",
			}, []string{"outcome", "dry_run"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "contentsync_run_duration_seconds",
				Help: "Duration of migration runs.",
				// Runs fetch two full collections; 50ms up to about 100s.
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			}, []string{"outcome"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_records_total",
				Help: "Source records by what the run did with them.",
			}, []string{"result", "dry_run"},
		),
	}
}

// ObserveRun records one finished run.
func (r *Recorder) ObserveRun(res *models.MigrationResult, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	dryRun := "false"
	if res != nil && res.DryRun {
		dryRun = "true"
	}

	r.runs.WithLabelValues(outcome, dryRun).Inc()
	r.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	if res == nil {
		return
	}
	r.records.WithLabelValues("created", dryRun).Add(float64(res.Created))
	r.records.WithLabelValues("skipped", dryRun).Add(float64(res.Skipped))
	r.records.WithLabelValues("error", dryRun).Add(float64(len(res.Errors)))
}

// Outcome classifies a run error.
func Outcome(err error) string {
	var upErr *etl.UpstreamError
	var cfgErr *config.ConfigError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &cfgErr):
		return OutcomeConfigError
	case errors.As(err, &upErr):
		return OutcomeUpstreamError
	default:
		return OutcomeError
	}
}

var _ etl.Observer = (*Recorder)(nil)

package metrics

import (
	"strconv"

	"FinPanel/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	builds   *prometheus.CounterVec
	rows     *prometheus.GaugeVec
	warnings *prometheus.CounterVec
	fetches  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		builds: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpanel_builds_total",
				Help: "Panel builds by outcome",
			},
			[]string{"panel", "ok"},
		),
		rows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finpanel_panel_rows",
				Help: "Row count of the last successful build",
			},
			[]string{"panel"},
		),
		warnings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpanel_build_warnings_total",
				Help: "Warnings emitted by panel builds",
			},
			[]string{"panel", "kind"},
		),
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpanel_series_fetches_total",
				Help: "Series fetches by source and outcome",
			},
			[]string{"source", "ok"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finpanel_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finpanel_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordBuild(panel string, ok bool, rows int) {
	r.builds.WithLabelValues(panel, strconv.FormatBool(ok)).Inc()
	if ok {
		r.rows.WithLabelValues(panel).Set(float64(rows))
	}
}

func (r *Recorder) RecordWarning(panel string, kind models.WarningKind) {
	r.warnings.WithLabelValues(panel, string(kind)).Inc()
}

func (r *Recorder) RecordFetch(source string, ok bool) {
	r.fetches.WithLabelValues(source, strconv.FormatBool(ok)).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordBuild(string, bool, int) {}
func (Nop) RecordWarning(string, models.WarningKind) {}
func (Nop) RecordFetch(string, bool) {}
func (Nop) RecordError(string) {}
func (Nop) RecordLatency(string, float64) {}

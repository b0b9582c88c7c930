package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

type Metrics struct {
	registry      *prometheus.Registry
	itemsTotal    *prometheus.CounterVec
	rowsInserted  *prometheus.CounterVec
	rowsRejected  *prometheus.CounterVec
	remaining     *prometheus.GaugeVec
	stageDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		itemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtside_items_total",
				Help: "Work items processed, by stage and outcome",
			},
			[]string{"stage", "outcome"},
		),
		rowsInserted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtside_rows_inserted_total",
				Help: "Rows newly inserted into destination tables",
			},
			[]string{"table"},
		),
		rowsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "courtside_rows_rejected_total",
				Help: "Rows skipped because a value could not be coerced",
			},
			[]string{"table"},
		),
		remaining: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "courtside_items_remaining",
				Help: "Work items left after the completion filter",
			},
			[]string{"stage"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "courtside_stage_duration_seconds",
				Help:    "Wall time of one stage run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
			[]string{"stage"},
		),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Item(stage, outcome string) {
	m.itemsTotal.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) Rows(table string, inserted int64, rejected int) {
	m.rowsInserted.WithLabelValues(table).Add(float64(inserted))
	m.rowsRejected.WithLabelValues(table).Add(float64(rejected))
}

func (m *Metrics) Remaining(stage string, n int) {
	m.remaining.WithLabelValues(stage).Set(float64(n))
}

func (m *Metrics) StageDone(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry holds the Prometheus instruments of the refresh pipeline.
type Telemetry struct {
	RowsMerged      *prometheus.GaugeVec
	RowsDropped     *prometheus.CounterVec
	SourceFailures  *prometheus.CounterVec
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
}

// NewTelemetry registers the pipeline instruments on the given registerer.
// Pass prometheus.DefaultRegisterer outside of tests.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	factory := promauto.With(reg)
	return &Telemetry{
		RowsMerged: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "laborpulse",
			Name:      "table_rows",
			Help:      "Rows in each persisted table after the last refresh.",
		}, []string{"table"}),
		RowsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laborpulse",
			Name:      "rows_dropped_total",
			Help:      "Malformed rows dropped during fetch or decode, by source.",
		}, []string{"source"}),
		SourceFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laborpulse",
			Name:      "source_failures_total",
			Help:      "Source fetch failures by source and failure kind.",
		}, []string{"source", "kind"}),
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "laborpulse",
			Name:      "refresh_total",
			Help:      "Completed refresh cycles by outcome.",
		}, []string{"status"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "laborpulse",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full refresh cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

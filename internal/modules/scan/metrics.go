package scan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics of scan runs
type Metrics struct {
	ScansTotal           *prometheus.CounterVec // labels: completion
	Duration             prometheus.Histogram
	InstrumentsProcessed prometheus.Counter
	InstrumentsFailed    prometheus.Counter
	StatisticsWritten    *prometheus.CounterVec // labels: universe
	Progress             *prometheus.GaugeVec   // labels: scan
}

// NewMetrics creates the scan metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendwatch_scans_total",
			Help: "Finished scan runs by completion status",
		}, []string{"completion"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trendwatch_scan_duration_seconds",
			Help:    "Wall time of a scan run",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		InstrumentsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendwatch_scan_instruments_processed_total",
			Help: "Instruments whose indicators were updated",
		}),
		InstrumentsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trendwatch_scan_instruments_failed_total",
			Help: "Instruments skipped because their history could not be loaded",
		}),
		StatisticsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trendwatch_statistics_written_total",
			Help: "Daily statistics inserted or updated by universe",
		}, []string{"universe"}),
		Progress: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "trendwatch_scan_progress_percent",
			Help: "Progress of the current or last run of a scan",
		}, []string{"scan"}),
	}

	reg.MustRegister(
		m.ScansTotal,
		m.Duration,
		m.InstrumentsProcessed,
		m.InstrumentsFailed,
		m.StatisticsWritten,
		m.Progress,
	)

	return m
}

// Package metrics records sync activity with Prometheus collectors in a
// private registry. There is no HTTP endpoint; the registry is written
// out in node-exporter textfile format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the tfgen collectors. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	reg *prometheus.Registry

	syncCycles      *prometheus.CounterVec
	candlesFetched  *prometheus.CounterVec
	normalizeErrors *prometheus.CounterVec
	resamples       *prometheus.CounterVec
	seriesLength    *prometheus.GaugeVec
	syncDuration    *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		reg: reg,
		syncCycles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgen_sync_cycles_total",
				Help: "Sync cycles by outcome",
			},
			[]string{"exchange", "result"},
		),
		candlesFetched: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgen_candles_fetched_total",
				Help: "Candles received from exchanges after normalization",
			},
			[]string{"exchange"},
		),
		normalizeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgen_normalize_errors_total",
				Help: "Responses that could not be normalized",
			},
			[]string{"exchange"},
		),
		resamples: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfgen_resample_total",
				Help: "Resample requests by outcome",
			},
			[]string{"result"},
		),
		seriesLength: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tfgen_series_length",
				Help: "Candles held in the base cache",
			},
			[]string{"exchange", "symbol"},
		),
		syncDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tfgen_sync_duration_seconds",
				Help:    "Duration of sync cycles in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"exchange"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// RecordSync records one finished cycle.
func (r *Recorder) RecordSync(exchange, symbol, result string, fetched, length int, seconds float64) {
	if r == nil {
		return
	}
	r.syncCycles.WithLabelValues(exchange, result).Inc()
	r.candlesFetched.WithLabelValues(exchange).Add(float64(fetched))
	r.seriesLength.WithLabelValues(exchange, symbol).Set(float64(length))
	r.syncDuration.WithLabelValues(exchange).Observe(seconds)
}

// RecordNormalizeError counts a response that failed normalization.
func (r *Recorder) RecordNormalizeError(exchange string) {
	if r == nil {
		return
	}
	r.normalizeErrors.WithLabelValues(exchange).Inc()
}

// RecordResample counts a resample by result ("ok" or "incompatible").
func (r *Recorder) RecordResample(result string) {
	if r == nil {
		return
	}
	r.resamples.WithLabelValues(result).Inc()
}

// WriteTextfile writes every collector to path for the node exporter
// textfile collector. The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}

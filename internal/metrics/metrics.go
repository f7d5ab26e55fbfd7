// Package metrics exposes Prometheus collectors for the acquisition pipeline.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal       *prometheus.CounterVec
	cacheLookupsTotal  *prometheus.CounterVec
	jobsExtractedTotal *prometheus.CounterVec
	scrapeCyclesTotal  prometheus.Counter
	scrapeCycleSeconds prometheus.Histogram
	storeSnapshotSize  prometheus.Gauge
	termFailuresTotal  *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfinders_fetches_total",
				Help: "Total outbound fetches, labeled by outcome (ok, error, stale).",
			},
			[]string{"outcome"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfinders_cache_lookups_total",
				Help: "Total response cache lookups, labeled by result (hit, miss).",
			},
			[]string{"result"},
		)

		jobsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfinders_jobs_extracted_total",
				Help: "Total detail pages extracted, labeled by result (found, skipped).",
			},
			[]string{"result"},
		)

		scrapeCyclesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "jobfinders_scrape_cycles_total",
				Help: "Total completed scheduler cycles.",
			},
		)

		scrapeCycleSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobfinders_scrape_cycle_seconds",
				Help:    "Histogram of full scrape cycle durations.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		)

		storeSnapshotSize = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobfinders_store_jobs",
				Help: "Number of jobs in the current store snapshot.",
			},
		)

		termFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobfinders_term_failures_total",
				Help: "Scrape failures recovered at the term boundary, labeled by term.",
			},
			[]string{"term"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one outbound fetch outcome.
func ObserveFetch(outcome string) {
	if fetchesTotal == nil {
		return
	}
	fetchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveCacheLookup records a cache hit or miss.
func ObserveCacheLookup(result string) {
	if cacheLookupsTotal == nil {
		return
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveExtraction records a found or skipped detail extraction.
func ObserveExtraction(result string) {
	if jobsExtractedTotal == nil {
		return
	}
	jobsExtractedTotal.WithLabelValues(result).Inc()
}

// ObserveCycle records one completed scheduler cycle and the resulting
// snapshot size.
func ObserveCycle(duration time.Duration, snapshotSize int) {
	if scrapeCyclesTotal == nil {
		return
	}
	scrapeCyclesTotal.Inc()
	scrapeCycleSeconds.Observe(duration.Seconds())
	storeSnapshotSize.Set(float64(snapshotSize))
}

// ObserveTermFailure records one recovered per-term failure.
func ObserveTermFailure(term string) {
	if termFailuresTotal == nil {
		return
	}
	termFailuresTotal.WithLabelValues(term).Inc()
}

// Package metrics exposes Prometheus collectors for the ingestion pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesFetchedTotal          *prometheus.CounterVec
	fetchDurationSeconds       prometheus.Histogram
	offersIngestedTotal        prometheus.Counter
	offersDuplicatesTotal      prometheus.Counter
	rowsSkippedTotal           prometheus.Counter
	crawlRunsTotal             *prometheus.CounterVec
	headlessPromotionsTotal    prometheus.Counter
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workinator_pages_fetched_total",
				Help: "Total listing pages fetched, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		fetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "workinator_fetch_duration_seconds",
				Help:    "Histogram of listing page fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		offersIngestedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "workinator_offers_ingested_total",
				Help: "Total new offers written to the store.",
			},
		)

		offersDuplicatesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "workinator_offers_duplicates_total",
				Help: "Total offers skipped because their fingerprint was already stored.",
			},
		)

		rowsSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "workinator_rows_skipped_total",
				Help: "Total listing rows dropped for missing required fields.",
			},
		)

		crawlRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workinator_crawl_runs_total",
				Help: "Total crawl runs, labeled by termination reason.",
			},
			[]string{"reason"},
		)

		headlessPromotionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "workinator_headless_promotions_total",
				Help: "Total crawl runs promoted to the headless browser.",
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records one listing page fetch.
func ObserveFetch(outcome string, duration time.Duration) {
	pagesFetchedTotal.WithLabelValues(outcome).Inc()
	fetchDurationSeconds.Observe(duration.Seconds())
}

// ObserveIngest records the per-page reconciliation counters.
func ObserveIngest(inserted, duplicates, skipped int) {
	offersIngestedTotal.Add(float64(inserted))
	offersDuplicatesTotal.Add(float64(duplicates))
	rowsSkippedTotal.Add(float64(skipped))
}

// ObserveRun records a finished crawl run.
func ObserveRun(reason string) {
	crawlRunsTotal.WithLabelValues(reason).Inc()
}

// ObserveHeadlessPromotion counts a promotion to the headless browser.
func ObserveHeadlessPromotion() {
	headlessPromotionsTotal.Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

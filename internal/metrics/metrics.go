// Package metrics exposes Prometheus collectors for menu resolution runs.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

var (
	fetchesTotal            *prometheus.CounterVec
	fetchDurationSeconds    *prometheus.HistogramVec
	cacheLookupsTotal       *prometheus.CounterVec
	strategyOutcomesTotal   *prometheus.CounterVec
	menusTotal              *prometheus.CounterVec
	rateLimitDelaysSeconds  *prometheus.HistogramVec
	feedDanglingItemsTotal  prometheus.Counter
	skippedPortalEntryTotal prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menufetcher_fetches_total",
				Help: "Total number of upstream fetches, labeled by document class and status.",
			},
			[]string{"class", "status"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "menufetcher_fetch_duration_seconds",
				Help:    "Histogram of upstream fetch latencies, labeled by document class.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"class"},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menufetcher_cache_lookups_total",
				Help: "Total number of page cache lookups, labeled by result.",
			},
			[]string{"result"},
		)

		strategyOutcomesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menufetcher_strategy_outcomes_total",
				Help: "Total number of resolution strategy outcomes, labeled by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		)

		menusTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "menufetcher_menus_total",
				Help: "Total number of menus produced, labeled by facility and source.",
			},
			[]string{"facility", "source"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "menufetcher_rate_limit_delays_seconds",
				Help:    "Histogram of rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		feedDanglingItemsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "menufetcher_feed_dangling_items_total",
				Help: "Total feed product references with no matching item record.",
			},
		)

		skippedPortalEntryTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "menufetcher_portal_entries_skipped_total",
				Help: "Total portal listing entries skipped for a malformed date range.",
			},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObserveFetch records one upstream fetch.
func ObserveFetch(class, status string, duration time.Duration) {
	Init()
	fetchesTotal.WithLabelValues(class, status).Inc()
	fetchDurationSeconds.WithLabelValues(class).Observe(duration.Seconds())
}

// ObserveCacheLookup records a page cache hit or miss.
func ObserveCacheLookup(result string) {
	Init()
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveStrategy records how a resolution strategy ended.
func ObserveStrategy(strategy, outcome string) {
	Init()
	strategyOutcomesTotal.WithLabelValues(strategy, outcome).Inc()
}

// ObserveMenu records a produced menu and the source that fed it.
func ObserveMenu(facility, source string) {
	Init()
	menusTotal.WithLabelValues(facility, source).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveDanglingItem counts a feed product reference that did not resolve.
func ObserveDanglingItem() {
	Init()
	feedDanglingItemsTotal.Inc()
}

// ObserveSkippedPortalEntry counts a portal entry dropped for a bad date range.
func ObserveSkippedPortalEntry() {
	Init()
	skippedPortalEntryTotal.Inc()
}

// WriteTextfile dumps every registered collector in the node-exporter textfile format.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

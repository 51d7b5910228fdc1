// Package metrics holds the Prometheus collectors for scrapes and lookups.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ResultOK labels a scrape that returned a record.
const ResultOK = "ok"

var (
	scrapesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathercrawl",
		Name:      "scrapes_total",
		Help:      "Scrapes by engine and result (ok or error code).",
	}, []string{"engine", "result"})

	scrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "weathercrawl",
		Name:      "scrape_duration_seconds",
		Help:      "Wall time of a scrape including session setup and teardown.",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
	}, []string{"engine"})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "weathercrawl",
		Name:      "field_lookups_total",
		Help:      "Field lookups by field and outcome (found, empty, timeout, fault, missing).",
	}, []string{"field", "outcome"})
)

// ObserveScrape records one finished scrape.
func ObserveScrape(engine, result string, elapsed time.Duration) {
	scrapesTotal.WithLabelValues(engine, result).Inc()
	scrapeDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// ObserveLookup records the outcome of one field lookup.
func ObserveLookup(field, outcome string) {
	lookupsTotal.WithLabelValues(field, outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics exports Prometheus collectors for queries, city switches
// and HTTP requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreiashu/safemap"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safemap_queries_total",
		Help: "Total number of search queries",
	}, []string{"city"})
	EmptyQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safemap_empty_results_total",
		Help: "Total number of queries with no results",
	}, []string{"city"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safemap_query_duration_ms",
		Help:    "Query duration in milliseconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100},
	}, []string{"city"})
	SwitchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safemap_city_switches_total",
		Help: "City switches by outcome",
	}, []string{"city", "status"})
	SwitchDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safemap_city_switch_duration_ms",
		Help:    "City switch (load and index) duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"city"})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safemap_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(EmptyQueriesTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(SwitchesTotal)
	prometheus.MustRegister(SwitchDurationMs)
	prometheus.MustRegister(RequestsTotal)
}

// Handler serves the registered metrics.
func Handler() http.Handler { return promhttp.Handler() }

// Observer feeds Atlas timings into the collectors.
type Observer struct{}

var _ safemap.Observer = Observer{}

func (Observer) SwitchDone(city safemap.CityKey, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SwitchesTotal.WithLabelValues(string(city), status).Inc()
	SwitchDurationMs.WithLabelValues(string(city)).Observe(ms(d))
}

func (Observer) QueryDone(city safemap.CityKey, d time.Duration, results int) {
	QueriesTotal.WithLabelValues(string(city)).Inc()
	if results == 0 {
		EmptyQueriesTotal.WithLabelValues(string(city)).Inc()
	}
	QueryDurationMs.WithLabelValues(string(city)).Observe(ms(d))
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

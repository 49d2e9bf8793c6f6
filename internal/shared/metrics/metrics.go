package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contractai",
			Name:      "errors_total",
			Help:      "Total application errors raised, by kind.",
		},
		[]string{"kind"},
	)

	dbInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "contractai",
		Subsystem: "db",
		Name:      "connections_in_use",
		Help:      "Connections currently checked out of the pool.",
	})
	dbIdle = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "contractai",
		Subsystem: "db",
		Name:      "connections_idle",
		Help:      "Idle connections in the pool.",
	})
	dbWaitCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "contractai",
		Subsystem: "db",
		Name:      "pool_wait_total",
		Help:      "Cumulative number of waits for a pooled connection.",
	})
)

func init() {
	registry.MustRegister(
		errorsTotal,
		dbInUse,
		dbIdle,
		dbWaitCount,
		collectors.NewGoCollector(),
	)
}

// IncError increments the error counter for one taxonomy kind.
func IncError(kind string) {
	errorsTotal.WithLabelValues(kind).Inc()
}

// ObservePool records the current pool stats of the shared *sql.DB.
func ObservePool(db *sql.DB) {
	if db == nil {
		return
	}
	stats := db.Stats()
	dbInUse.Set(float64(stats.InUse))
	dbIdle.Set(float64(stats.Idle))
	dbWaitCount.Set(float64(stats.WaitCount))
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

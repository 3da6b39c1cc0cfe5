package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	materializationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lakeread_materializations_total",
			Help: "Total number of result materializations by path and status.",
		},
		[]string{"path", "status"},
	)
	materializationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lakeread_materialization_duration_seconds",
			Help:    "Result materialization latency by path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
	rowsMaterializedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeread_rows_materialized_total",
			Help: "Total number of rows materialized into result tables.",
		},
	)
	manifestEntriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lakeread_manifest_entries_total",
			Help: "Total number of part files listed by UNLOAD data manifests.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		materializationsTotal,
		materializationDurationSeconds,
		rowsMaterializedTotal,
		manifestEntriesTotal,
	)
}

func ObserveMaterialization(path string, err error, rows int, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	materializationsTotal.WithLabelValues(path, status).Inc()
	materializationDurationSeconds.WithLabelValues(path).Observe(elapsed.Seconds())
	if rows > 0 {
		rowsMaterializedTotal.Add(float64(rows))
	}
}

func ObserveManifest(entries int) {
	if entries > 0 {
		manifestEntriesTotal.Add(float64(entries))
	}
}

package services

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type importMetrics struct {
	rowsTotal    *prometheus.CounterVec
	batchLatency prometheus.Histogram
	runsTotal    *prometheus.CounterVec
}

var importMetricsSingleton = sync.OnceValue(func() *importMetrics {
	return &importMetrics{
		rowsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster_import",
			Name:      "rows_total",
			Help:      "Total number of import rows by outcome.",
		}, []string{"kind", "action"}),
		batchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "roster_import",
			Name:      "batch_duration_seconds",
			Help:      "Latency distribution for batch processing.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
		runsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "roster_import",
			Name:      "runs_total",
			Help:      "Total number of import runs by result.",
		}, []string{"kind", "result"}),
	}
})

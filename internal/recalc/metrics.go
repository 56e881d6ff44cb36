package recalc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RecomputesTotal counts recomputation runs by kind and outcome.
var RecomputesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "learnlog",
	Subsystem: "recalc",
	Name:      "recomputes_total",
	Help:      "Score recomputation runs by kind (incremental/rebuild) and status.",
}, []string{"kind", "status"})

// RecomputeDuration tracks how long recomputation runs take.
var RecomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "learnlog",
	Subsystem: "recalc",
	Name:      "recompute_duration_seconds",
	Help:      "Score recomputation latency by kind.",
	Buckets:   prometheus.DefBuckets,
}, []string{"kind"})

func observeRecompute(kind string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	RecomputesTotal.WithLabelValues(kind, status).Inc()
	RecomputeDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

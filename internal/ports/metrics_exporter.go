package ports

import (
	"context"
	"time"
)

// MetricsExporter ships recomputation metrics to an external observability
// system.
type MetricsExporter interface {
	// ExportRecompute exports metrics for one completed recomputation.
	ExportRecompute(ctx context.Context, m *RecomputeMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// RecomputeMetrics describes one run of the recalculation engine.
type RecomputeMetrics struct {
	StageID string
	// Kind is "incremental" for single-date updates, "rebuild" for full
	// stage rebuilds.
	Kind            string
	DaysRecomputed  int64
	WeeksRecomputed int64
	Duration        time.Duration
	Failed          bool
}

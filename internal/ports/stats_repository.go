package ports

import (
	"context"
	"time"

	"learnlog/internal/domain"
)

// KPIStats holds the headline numbers shown above the trend charts.
type KPIStats struct {
	TotalHours      float64
	ActiveDays      int64
	AvgDailyMinutes float64
}

// DailyDuration is the total minutes logged on one date across all of the
// owner's stages.
type DailyDuration struct {
	LogDate     time.Time
	DurationMin int
}

// CategoryBreakdown is the pie-chart payload: top-level slices plus a
// per-category drilldown into subcategories.
type CategoryBreakdown struct {
	Main      []domain.CategorySlice
	Drilldown map[string][]domain.CategorySlice
}

// StatsRepository serves the read-only rollups consumed by the trend and
// category charts. It never touches derived score rows.
type StatsRepository interface {
	KPIs(ctx context.Context, ownerID string) (*KPIStats, error)
	DailyDurations(ctx context.Context, ownerID string) ([]DailyDuration, error)
	// CategoryBreakdown aggregates logged minutes by category; stageID
	// narrows to one stage, nil means all history.
	CategoryBreakdown(ctx context.Context, ownerID string, stageID *string) (*CategoryBreakdown, error)
}

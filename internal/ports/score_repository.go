package ports

import (
	"context"
	"time"

	"learnlog/internal/domain"
)

// ScoreRepository owns the derived daily_scores and weekly_scores tables.
// Only the recalculation engine writes through it; every other component
// reads. Derived rows are a materialized view of log entries, never an
// independent source of truth.
type ScoreRepository interface {
	UpsertDaily(ctx context.Context, score domain.DailyScore) error
	// DailyDates returns every date the stage has a daily score row for,
	// including historical zero rows whose entries were all deleted.
	DailyDates(ctx context.Context, stageID string) ([]time.Time, error)
	// SumDailyRange sums daily scores over [start, end] inclusive.
	SumDailyRange(ctx context.Context, stageID string, start, end time.Time) (float64, error)
	ListDailyByStage(ctx context.Context, stageID string) ([]domain.DailyScore, error)
	ListDailyByOwner(ctx context.Context, ownerID string) ([]domain.DailyScore, error)
	DeleteDailyByStage(ctx context.Context, stageID string) error

	UpsertWeekly(ctx context.Context, score domain.WeeklyScore) error
	ListWeeklyByStage(ctx context.Context, stageID string) ([]domain.WeeklyScore, error)
	DeleteWeeklyByStage(ctx context.Context, stageID string) error
}

package ports

import (
	"context"
	"time"

	"learnlog/internal/domain"
)

type LogRepository interface {
	Create(ctx context.Context, entry *domain.LogEntry) error
	GetByID(ctx context.Context, id string) (*domain.LogEntry, error)
	Update(ctx context.Context, entry *domain.LogEntry) error
	Delete(ctx context.Context, id string) error

	// ListByStageAndDate returns the raw input of one derived daily score.
	ListByStageAndDate(ctx context.Context, stageID string, day time.Time) ([]domain.LogEntry, error)
	// DistinctDates returns every date the stage has entries on, ascending.
	DistinctDates(ctx context.Context, stageID string) ([]time.Time, error)
	// EarliestDate returns the first logged date across all of the owner's
	// stages, or nil when the owner has no entries at all.
	EarliestDate(ctx context.Context, ownerID string) (*time.Time, error)
}

package ports

import (
	"context"
	"time"

	"learnlog/internal/domain"
)

type StageRepository interface {
	Create(ctx context.Context, stage *domain.Stage) error
	// GetByID returns domain.ErrStageNotFound when the stage does not exist.
	GetByID(ctx context.Context, id string) (*domain.Stage, error)
	// ListByOwner returns the owner's stages ordered by start date ascending.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Stage, error)
	// NextStartAfter returns the start date of the chronologically next stage
	// owned by the same user, or nil when the given date belongs to the
	// latest stage.
	NextStartAfter(ctx context.Context, ownerID string, after time.Time) (*time.Time, error)
	// Delete removes the stage; log entries and derived scores cascade.
	Delete(ctx context.Context, id string) error
}

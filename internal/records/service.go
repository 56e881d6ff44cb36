// Package records owns log-entry and stage mutations. Every mutation and
// its derived-score recomputation run in one transaction, so readers after
// commit always see scores consistent with the entries that produced them.
package records

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"learnlog/internal/domain"
	"learnlog/internal/ports"
	"learnlog/internal/recalc"
)

type Service struct {
	store  ports.Store
	engine *recalc.Engine
	now    func() time.Time
}

func NewService(store ports.Store, engine *recalc.Engine) *Service {
	return &Service{store: store, engine: engine, now: time.Now}
}

// AddLog persists a new entry and updates its day's and week's scores.
func (s *Service) AddLog(ctx context.Context, entry *domain.LogEntry) error {
	entry.Normalize()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	return s.engine.WithStageLock(entry.StageID, func() error {
		return s.store.WithinTx(ctx, func(r ports.Repositories) error {
			if err := r.Logs().Create(ctx, entry); err != nil {
				return err
			}
			return s.engine.OnLogCreated(ctx, r, entry)
		})
	})
}

// UpdateLog applies edits to an existing entry. When the edit moves the
// entry to another date, both the old and new days are recomputed.
func (s *Service) UpdateLog(ctx context.Context, entry *domain.LogEntry) error {
	entry.Normalize()

	return s.engine.WithStageLock(entry.StageID, func() error {
		return s.store.WithinTx(ctx, func(r ports.Repositories) error {
			existing, err := r.Logs().GetByID(ctx, entry.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return fmt.Errorf("log entry %s not found", entry.ID)
			}
			if existing.StageID != entry.StageID {
				return fmt.Errorf("log entry %s belongs to another stage", entry.ID)
			}

			if err := r.Logs().Update(ctx, entry); err != nil {
				return err
			}
			return s.engine.OnLogUpdated(ctx, r, entry, existing.LogDate)
		})
	})
}

// DeleteLog removes an entry and recomputes the day it was on. The day's
// daily score row survives at zero; it is history, not an orphan.
func (s *Service) DeleteLog(ctx context.Context, id string) error {
	// Resolve the stage outside the lock to know what to lock. Entries
	// never move across stages (UpdateLog rejects that), so the stage id
	// read here stays valid.
	existing, err := s.store.Logs().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("log entry %s not found", id)
	}

	return s.engine.WithStageLock(existing.StageID, func() error {
		return s.store.WithinTx(ctx, func(r ports.Repositories) error {
			// Re-read under the lock: a concurrent edit may have moved
			// the entry to another date since the pre-read.
			fresh, err := r.Logs().GetByID(ctx, id)
			if err != nil {
				return err
			}
			if fresh == nil {
				return fmt.Errorf("log entry %s not found", id)
			}
			if err := r.Logs().Delete(ctx, id); err != nil {
				return err
			}
			return s.engine.OnLogDeleted(ctx, r, fresh)
		})
	})
}

// CreateStage adds a new stage. Inserting a stage shortens its predecessor
// (the predecessor now ends the day before the new start), so the
// predecessor's weekly clipping is rebuilt in the same transaction.
func (s *Service) CreateStage(ctx context.Context, stage *domain.Stage) error {
	if stage.ID == "" {
		stage.ID = uuid.NewString()
	}
	if stage.CreatedAt.IsZero() {
		stage.CreatedAt = s.now().UTC()
	}
	stage.StartDate = domain.Day(stage.StartDate)

	return s.store.WithinTx(ctx, func(r ports.Repositories) error {
		prev, err := s.precedingStage(ctx, r, stage.OwnerID, stage.StartDate)
		if err != nil {
			return err
		}
		if err := r.Stages().Create(ctx, stage); err != nil {
			return err
		}
		if prev != nil {
			return s.engine.RebuildStage(ctx, r, prev.ID)
		}
		return nil
	})
}

// DeleteStage removes a stage; entries and derived scores cascade away.
// The predecessor stage absorbs the freed timeline, so it is rebuilt.
func (s *Service) DeleteStage(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(r ports.Repositories) error {
		stage, err := r.Stages().GetByID(ctx, id)
		if err != nil {
			return err
		}
		prev, err := s.precedingStage(ctx, r, stage.OwnerID, stage.StartDate)
		if err != nil {
			return err
		}
		if err := r.Stages().Delete(ctx, id); err != nil {
			return err
		}
		if prev != nil {
			return s.engine.RebuildStage(ctx, r, prev.ID)
		}
		return nil
	})
}

// RecomputeStage rebuilds one stage's derived tables from scratch. Exposed
// for manual re-sync and called after bulk imports.
func (s *Service) RecomputeStage(ctx context.Context, stageID string) error {
	return s.engine.WithStageLock(stageID, func() error {
		return s.store.WithinTx(ctx, func(r ports.Repositories) error {
			return s.engine.RebuildStage(ctx, r, stageID)
		})
	})
}

// BulkImport runs load against tx-bound repositories and rebuilds every
// stage in stageIDs inside that same transaction: imported rows and their
// derived scores commit together or not at all. Stage locks are taken in
// sorted order so two concurrent imports cannot deadlock.
func (s *Service) BulkImport(ctx context.Context, stageIDs []string, load func(ports.Repositories) error) error {
	ids := append([]string(nil), stageIDs...)
	sort.Strings(ids)

	return s.withStageLocks(ids, func() error {
		return s.store.WithinTx(ctx, func(r ports.Repositories) error {
			if err := load(r); err != nil {
				return err
			}
			return s.engine.OnBulkImportCompleted(ctx, r, ids)
		})
	})
}

func (s *Service) withStageLocks(ids []string, fn func() error) error {
	if len(ids) == 0 {
		return fn()
	}
	return s.engine.WithStageLock(ids[0], func() error {
		return s.withStageLocks(ids[1:], fn)
	})
}

func (s *Service) precedingStage(ctx context.Context, r ports.Repositories, ownerID string, before time.Time) (*domain.Stage, error) {
	stages, err := r.Stages().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var prev *domain.Stage
	for i := range stages {
		if stages[i].StartDate.Before(before) {
			prev = &stages[i]
		}
	}
	return prev, nil
}

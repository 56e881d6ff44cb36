// Package recalc keeps the derived daily and weekly score tables consistent
// with the raw log entries. It is the only writer of those tables.
package recalc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"learnlog/internal/domain"
	"learnlog/internal/ports"
)

const (
	// KindIncremental recomputes only the dates touched by one mutation.
	KindIncremental = "incremental"
	// KindRebuild drops and recomputes a stage's derived tables in full.
	KindRebuild = "rebuild"
)

// Engine orchestrates score recomputation. All mutating methods expect
// transaction-bound repositories: the caller wraps the triggering mutation
// and the recompute in one Store.WithinTx so they commit or roll back
// together. The required invariant is that a full rebuild and a sequence of
// incremental updates produce identical derived tables.
type Engine struct {
	exporter ports.MetricsExporter
	now      func() time.Time

	mu         sync.Mutex
	stageLocks map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine's notion of "today". Tests pin it so
// current-week clipping is deterministic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithExporter ships per-recompute metrics to an external collector.
func WithExporter(exp ports.MetricsExporter) Option {
	return func(e *Engine) { e.exporter = exp }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now:        time.Now,
		stageLocks: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithStageLock serializes writers of one stage's derived data. The
// database transaction alone only gives whatever isolation the driver
// defaults to; this makes the single-writer-per-stage rule explicit
// within the process.
func (e *Engine) WithStageLock(stageID string, fn func() error) error {
	e.mu.Lock()
	lock, ok := e.stageLocks[stageID]
	if !ok {
		lock = &sync.Mutex{}
		e.stageLocks[stageID] = lock
	}
	e.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()
	return fn()
}

// OnLogCreated recomputes the derived rows for a newly created entry's date.
func (e *Engine) OnLogCreated(ctx context.Context, r ports.Repositories, entry *domain.LogEntry) error {
	return e.RecomputeDates(ctx, r, entry.StageID, entry.LogDate)
}

// OnLogUpdated recomputes both the entry's new date and, when an edit moved
// the log across days, the date it left behind.
func (e *Engine) OnLogUpdated(ctx context.Context, r ports.Repositories, entry *domain.LogEntry, oldDate time.Time) error {
	if domain.Day(oldDate).Equal(domain.Day(entry.LogDate)) {
		return e.RecomputeDates(ctx, r, entry.StageID, entry.LogDate)
	}
	return e.RecomputeDates(ctx, r, entry.StageID, entry.LogDate, oldDate)
}

// OnLogDeleted recomputes the deleted entry's date. Deleting the last entry
// of a day leaves a zero daily score row behind rather than removing it:
// the day was logged once, and its history stays visible to the charts.
func (e *Engine) OnLogDeleted(ctx context.Context, r ports.Repositories, entry *domain.LogEntry) error {
	return e.RecomputeDates(ctx, r, entry.StageID, entry.LogDate)
}

// OnBulkImportCompleted rebuilds every stage a bulk import touched. It runs
// against the same transaction that inserted the imported rows, so the rows
// and their derived scores become visible together.
func (e *Engine) OnBulkImportCompleted(ctx context.Context, r ports.Repositories, stageIDs []string) error {
	for _, id := range stageIDs {
		if err := e.RebuildStage(ctx, r, id); err != nil {
			return fmt.Errorf("rebuild stage %s: %w", id, err)
		}
	}
	return nil
}

// RecomputeDates recomputes the daily scores for the given dates, then the
// weekly score of every bucket those dates belong to. Daily rows are all
// written before any weekly bucket is read back, so buckets containing more
// than one affected date see consistent inputs.
func (e *Engine) RecomputeDates(ctx context.Context, r ports.Repositories, stageID string, dates ...time.Time) error {
	started := e.now()

	stage, stageEnd, err := e.resolveStage(ctx, r, stageID)
	if err != nil {
		return err
	}

	days := dedupDays(dates)
	for _, day := range days {
		if err := e.recomputeDay(ctx, r, stage, day); err != nil {
			e.report(ctx, KindIncremental, stageID, 0, 0, started, err)
			return err
		}
	}

	weeks := dedupWeeks(stage, days)
	for _, week := range weeks {
		if err := e.recomputeWeek(ctx, r, stage, stageEnd, week); err != nil {
			e.report(ctx, KindIncremental, stageID, 0, 0, started, err)
			return err
		}
	}

	e.report(ctx, KindIncremental, stageID, int64(len(days)), int64(len(weeks)), started, nil)
	return nil
}

// RebuildStage drops the stage's derived tables and recomputes them from
// scratch. The recompute set is the union of dates carrying entries and
// dates that already had a daily row, which preserves historical zero rows
// across rebuilds and keeps rebuilds equivalent to incremental updates.
func (e *Engine) RebuildStage(ctx context.Context, r ports.Repositories, stageID string) error {
	started := e.now()

	stage, stageEnd, err := e.resolveStage(ctx, r, stageID)
	if err != nil {
		return err
	}

	entryDates, err := r.Logs().DistinctDates(ctx, stageID)
	if err != nil {
		e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
		return err
	}
	priorDates, err := r.Scores().DailyDates(ctx, stageID)
	if err != nil {
		e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
		return err
	}

	if err := r.Scores().DeleteDailyByStage(ctx, stageID); err != nil {
		e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
		return err
	}
	if err := r.Scores().DeleteWeeklyByStage(ctx, stageID); err != nil {
		e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
		return err
	}

	days := dedupDays(append(entryDates, priorDates...))
	for _, day := range days {
		if err := e.recomputeDay(ctx, r, stage, day); err != nil {
			e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
			return err
		}
	}

	weeks := dedupWeeks(stage, days)
	for _, week := range weeks {
		if err := e.recomputeWeek(ctx, r, stage, stageEnd, week); err != nil {
			e.report(ctx, KindRebuild, stageID, 0, 0, started, err)
			return err
		}
	}

	e.report(ctx, KindRebuild, stageID, int64(len(days)), int64(len(weeks)), started, nil)
	return nil
}

func (e *Engine) resolveStage(ctx context.Context, r ports.Repositories, stageID string) (*domain.Stage, time.Time, error) {
	stage, err := r.Stages().GetByID(ctx, stageID)
	if err != nil {
		return nil, time.Time{}, err
	}

	next, err := r.Stages().NextStartAfter(ctx, stage.OwnerID, stage.StartDate)
	if err != nil {
		return nil, time.Time{}, err
	}

	today := domain.Day(e.now())
	return stage, stage.EndDate(next, today), nil
}

func (e *Engine) recomputeDay(ctx context.Context, r ports.Repositories, stage *domain.Stage, day time.Time) error {
	entries, err := r.Logs().ListByStageAndDate(ctx, stage.ID, day)
	if err != nil {
		return err
	}
	return r.Scores().UpsertDaily(ctx, domain.DailyScore{
		StageID: stage.ID,
		LogDate: day,
		Score:   domain.ScoreDay(entries),
	})
}

func (e *Engine) recomputeWeek(ctx context.Context, r ports.Repositories, stage *domain.Stage, stageEnd time.Time, week domain.WeekRef) error {
	start, end, days := stage.WeekWindow(week.Number, stageEnd, domain.Day(e.now()))

	var sum float64
	if days > 0 {
		var err error
		sum, err = r.Scores().SumDailyRange(ctx, stage.ID, start, end)
		if err != nil {
			return err
		}
	}

	return r.Scores().UpsertWeekly(ctx, domain.WeeklyScore{
		StageID: stage.ID,
		Week:    week,
		Score:   domain.ScoreWeek(sum, days),
	})
}

func (e *Engine) report(ctx context.Context, kind, stageID string, days, weeks int64, started time.Time, err error) {
	elapsed := e.now().Sub(started)
	observeRecompute(kind, elapsed, err)

	if e.exporter == nil {
		return
	}
	// Metrics export must never fail the mutation.
	_ = e.exporter.ExportRecompute(ctx, &ports.RecomputeMetrics{
		StageID:         stageID,
		Kind:            kind,
		DaysRecomputed:  days,
		WeeksRecomputed: weeks,
		Duration:        elapsed,
		Failed:          err != nil,
	})
}

func dedupDays(dates []time.Time) []time.Time {
	seen := make(map[time.Time]bool, len(dates))
	var out []time.Time
	for _, d := range dates {
		day := domain.Day(d)
		if seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	return out
}

func dedupWeeks(stage *domain.Stage, days []time.Time) []domain.WeekRef {
	seen := make(map[domain.WeekRef]bool, len(days))
	var out []domain.WeekRef
	for _, day := range days {
		week := domain.WeekOf(day, stage.StartDate)
		if seen[week] {
			continue
		}
		seen[week] = true
		out = append(out, week)
	}
	return out
}

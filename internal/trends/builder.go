// Package trends assembles the chart payloads: gap-filled daily and weekly
// efficiency series spanning every stage, smoothed overlays, stage span
// annotations and the headline KPIs.
package trends

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"learnlog/internal/domain"
	"learnlog/internal/ports"
	"learnlog/internal/util"
)

const (
	dailySMAWindow  = 7
	weeklySMAWindow = 3
)

// DailyPoint is one day on the continuous daily axis. Efficiency is nil on
// days without a daily score row, which keeps logging gaps visible as gaps
// instead of fake zeroes.
type DailyPoint struct {
	Date        time.Time
	Efficiency  *float64
	DurationMin int
}

// WeeklyPoint is one bucket on the owner-wide weekly axis.
type WeeklyPoint struct {
	Week       domain.WeekRef
	Efficiency *float64
}

// StageSpan marks where a stage sits on the owner-wide weekly axis, for
// chart annotations.
type StageSpan struct {
	ID        string
	Name      string
	FirstWeek domain.WeekRef
	LastWeek  domain.WeekRef
}

// Report is the full trends payload for one owner.
type Report struct {
	Daily     []DailyPoint
	DailySMA  []*float64
	Weekly    []WeeklyPoint
	WeeklySMA []*float64
	Stages    []StageSpan
	KPIs      ports.KPIStats
}

type Builder struct {
	store ports.Store
	now   func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the builder's notion of "today".
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

func NewBuilder(store ports.Store, opts ...BuilderOption) *Builder {
	b := &Builder{store: store, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the owner's trend report. The three read paths are
// independent, so they run fanned out.
func (b *Builder) Build(ctx context.Context, ownerID string) (*Report, error) {
	report := &Report{}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		daily, err := b.buildDaily(ctx, ownerID)
		if err != nil {
			return err
		}
		report.Daily = daily
		return nil
	})
	g.Go(func() error {
		weekly, spans, err := b.buildWeekly(ctx, ownerID)
		if err != nil {
			return err
		}
		report.Weekly = weekly
		report.Stages = spans
		return nil
	})
	g.Go(func() error {
		kpis, err := b.store.Stats().KPIs(ctx, ownerID)
		if err != nil {
			return err
		}
		report.KPIs = *kpis
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.DailySMA = SMA(dailyEfficiencies(report.Daily), dailySMAWindow)
	report.WeeklySMA = SMA(weeklyEfficiencies(report.Weekly), weeklySMAWindow)
	return report, nil
}

// Categories returns the pie-chart breakdown, optionally narrowed to one
// stage.
func (b *Builder) Categories(ctx context.Context, ownerID string, stageID *string) (*ports.CategoryBreakdown, error) {
	return b.store.Stats().CategoryBreakdown(ctx, ownerID, stageID)
}

// buildDaily lays every calendar day from the first logged date through
// today onto one axis, merging daily scores and logged minutes across all of
// the owner's stages.
func (b *Builder) buildDaily(ctx context.Context, ownerID string) ([]DailyPoint, error) {
	earliest, err := b.store.Logs().EarliestDate(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	scores, err := b.store.Scores().ListDailyByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	durations, err := b.store.Stats().DailyDurations(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	effByDay := make(map[time.Time]float64, len(scores))
	hasScore := make(map[time.Time]bool, len(scores))
	for _, s := range scores {
		day := domain.Day(s.LogDate)
		effByDay[day] += s.Score
		hasScore[day] = true
		// Historical zero rows anchor the axis even after every entry on
		// them was deleted.
		if earliest == nil || day.Before(*earliest) {
			earliest = &day
		}
	}
	if earliest == nil {
		return nil, nil
	}
	minByDay := make(map[time.Time]int, len(durations))
	for _, d := range durations {
		minByDay[domain.Day(d.LogDate)] = d.DurationMin
	}

	today := domain.Day(b.now())
	var out []DailyPoint
	for day := domain.Day(*earliest); !day.After(today); day = day.AddDate(0, 0, 1) {
		p := DailyPoint{Date: day, DurationMin: minByDay[day]}
		if hasScore[day] {
			p.Efficiency = util.Float64Ptr(effByDay[day])
		}
		out = append(out, p)
	}
	return out, nil
}

// buildWeekly projects every stage's weekly buckets onto a single grid
// anchored at the earliest stage's start date, so the axis never restarts
// at a stage transition. When stage anchors are misaligned, two stage
// buckets can land on the same owner-wide week; their scores merge weighted
// by effective days. Weeks with no data in between stay null.
func (b *Builder) buildWeekly(ctx context.Context, ownerID string) ([]WeeklyPoint, []StageSpan, error) {
	stages, err := b.store.Stages().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, nil, err
	}
	if len(stages) == 0 {
		return nil, nil, nil
	}

	anchor := domain.Day(stages[0].StartDate)
	today := domain.Day(b.now())

	type bucket struct {
		weighted float64
		days     int
	}
	buckets := make(map[int]bucket)
	minNum, maxNum := 0, 0

	spans := make([]StageSpan, 0, len(stages))
	for i, st := range stages {
		stageEnd := today
		if i+1 < len(stages) {
			stageEnd = domain.Day(stages[i+1].StartDate).AddDate(0, 0, -1)
		}
		spans = append(spans, StageSpan{
			ID:        st.ID,
			Name:      st.Name,
			FirstWeek: domain.WeekOf(st.StartDate, anchor),
			LastWeek:  domain.WeekOf(stageEnd, anchor),
		})

		rows, err := b.store.Scores().ListWeeklyByStage(ctx, st.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, row := range rows {
			bucketStart := domain.Day(st.StartDate).AddDate(0, 0, 7*(row.Week.Number-1))
			global := domain.WeekOf(bucketStart, anchor)
			_, _, days := st.WeekWindow(row.Week.Number, stageEnd, today)
			if days <= 0 {
				days = 1
			}

			bkt := buckets[global.Number]
			bkt.weighted += row.Score * float64(days)
			bkt.days += days
			buckets[global.Number] = bkt

			if minNum == 0 || global.Number < minNum {
				minNum = global.Number
			}
			if global.Number > maxNum {
				maxNum = global.Number
			}
		}
	}

	if len(buckets) == 0 {
		return nil, spans, nil
	}
	if last := domain.WeekOf(today, anchor).Number; last > maxNum {
		maxNum = last
	}

	var out []WeeklyPoint
	for n := minNum; n <= maxNum; n++ {
		weekStart := anchor.AddDate(0, 0, 7*(n-1))
		p := WeeklyPoint{Week: domain.WeekRef{Year: weekStart.Year(), Number: n}}
		if bkt, ok := buckets[n]; ok && bkt.days > 0 {
			p.Efficiency = util.Float64Ptr(bkt.weighted / float64(bkt.days))
		}
		out = append(out, p)
	}
	return out, spans, nil
}

func dailyEfficiencies(points []DailyPoint) []*float64 {
	out := make([]*float64, len(points))
	for i := range points {
		out[i] = points[i].Efficiency
	}
	return out
}

func weeklyEfficiencies(points []WeeklyPoint) []*float64 {
	out := make([]*float64, len(points))
	for i := range points {
		out[i] = points[i].Efficiency
	}
	return out
}

package turso

import (
	"context"
	"fmt"

	"learnlog/internal/domain"
	"learnlog/internal/ports"
)

type StatsRepository struct {
	db DBTX
}

func (r *StatsRepository) KPIs(ctx context.Context, ownerID string) (*ports.KPIStats, error) {
	var totalMin, activeDays int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(e.duration_min), 0), COUNT(DISTINCT date(e.log_date))
		 FROM log_entries e
		 JOIN stages s ON s.id = e.stage_id
		 WHERE s.owner_id = ?`, ownerID).Scan(&totalMin, &activeDays)
	if err != nil {
		return nil, fmt.Errorf("kpi rollup: %w", err)
	}

	kpis := &ports.KPIStats{
		TotalHours: float64(totalMin) / 60.0,
		ActiveDays: activeDays,
	}
	if activeDays > 0 {
		kpis.AvgDailyMinutes = float64(totalMin) / float64(activeDays)
	}
	return kpis, nil
}

func (r *StatsRepository) DailyDurations(ctx context.Context, ownerID string) ([]ports.DailyDuration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date(e.log_date), SUM(e.duration_min)
		 FROM log_entries e
		 JOIN stages s ON s.id = e.stage_id
		 WHERE s.owner_id = ?
		 GROUP BY 1 ORDER BY 1 ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("daily durations: %w", err)
	}
	defer rows.Close()

	var out []ports.DailyDuration
	for rows.Next() {
		var dateStr string
		var d ports.DailyDuration
		if err := rows.Scan(&dateStr, &d.DurationMin); err != nil {
			return nil, fmt.Errorf("scan daily duration: %w", err)
		}
		day, err := scanDay(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse daily duration date: %w", err)
		}
		d.LogDate = day
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily durations: %w", err)
	}
	return out, nil
}

const uncategorized = "uncategorized"

func (r *StatsRepository) CategoryBreakdown(ctx context.Context, ownerID string, stageID *string) (*ports.CategoryBreakdown, error) {
	query := `
		SELECT COALESCE(c.name, ?), COALESCE(sub.name, ?), SUM(e.duration_min)
		FROM log_entries e
		JOIN stages s ON s.id = e.stage_id
		LEFT JOIN subcategories sub ON sub.id = e.subcategory_id
		LEFT JOIN categories c ON c.id = sub.category_id
		WHERE s.owner_id = ?`
	args := []any{uncategorized, uncategorized, ownerID}
	if stageID != nil {
		query += ` AND e.stage_id = ?`
		args = append(args, *stageID)
	}
	query += ` GROUP BY 1, 2 ORDER BY 3 DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := &ports.CategoryBreakdown{Drilldown: make(map[string][]domain.CategorySlice)}
	mainTotals := make(map[string]int)
	var mainOrder []string

	for rows.Next() {
		var category, subcategory string
		var minutes int
		if err := rows.Scan(&category, &subcategory, &minutes); err != nil {
			return nil, fmt.Errorf("scan category slice: %w", err)
		}
		if _, seen := mainTotals[category]; !seen {
			mainOrder = append(mainOrder, category)
		}
		mainTotals[category] += minutes
		breakdown.Drilldown[category] = append(breakdown.Drilldown[category],
			domain.CategorySlice{Name: subcategory, DurationMin: minutes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category slices: %w", err)
	}

	for _, name := range mainOrder {
		breakdown.Main = append(breakdown.Main,
			domain.CategorySlice{Name: name, DurationMin: mainTotals[name]})
	}
	return breakdown, nil
}

package turso

import (
	"context"
	"fmt"
	"time"

	"learnlog/internal/domain"
)

type ScoreRepository struct {
	db DBTX
}

func (r *ScoreRepository) UpsertDaily(ctx context.Context, score domain.DailyScore) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO daily_scores (stage_id, log_date, score) VALUES (?, ?, ?)
		 ON CONFLICT (stage_id, log_date) DO UPDATE SET score = excluded.score`,
		score.StageID, domain.FormatDate(score.LogDate), score.Score)
	if err != nil {
		return fmt.Errorf("upsert daily score: %w", err)
	}
	return nil
}

func (r *ScoreRepository) DailyDates(ctx context.Context, stageID string) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT log_date FROM daily_scores WHERE stage_id = ? ORDER BY log_date ASC`, stageID)
	if err != nil {
		return nil, fmt.Errorf("daily score dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan daily score date: %w", err)
		}
		d, err := scanDay(s)
		if err != nil {
			return nil, fmt.Errorf("parse daily score date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily score dates: %w", err)
	}
	return dates, nil
}

func (r *ScoreRepository) SumDailyRange(ctx context.Context, stageID string, start, end time.Time) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM daily_scores
		 WHERE stage_id = ? AND date(log_date) >= date(?) AND date(log_date) <= date(?)`,
		stageID, domain.FormatDate(start), domain.FormatDate(end)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum daily scores: %w", err)
	}
	return sum, nil
}

func (r *ScoreRepository) ListDailyByStage(ctx context.Context, stageID string) ([]domain.DailyScore, error) {
	return r.listDaily(ctx,
		`SELECT stage_id, log_date, score FROM daily_scores
		 WHERE stage_id = ? ORDER BY log_date ASC`, stageID)
}

func (r *ScoreRepository) ListDailyByOwner(ctx context.Context, ownerID string) ([]domain.DailyScore, error) {
	return r.listDaily(ctx,
		`SELECT d.stage_id, d.log_date, d.score FROM daily_scores d
		 JOIN stages s ON s.id = d.stage_id
		 WHERE s.owner_id = ? ORDER BY d.log_date ASC`, ownerID)
}

func (r *ScoreRepository) DeleteDailyByStage(ctx context.Context, stageID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM daily_scores WHERE stage_id = ?`, stageID); err != nil {
		return fmt.Errorf("delete daily scores: %w", err)
	}
	return nil
}

func (r *ScoreRepository) UpsertWeekly(ctx context.Context, score domain.WeeklyScore) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO weekly_scores (stage_id, year, week_num, score) VALUES (?, ?, ?, ?)
		 ON CONFLICT (stage_id, year, week_num) DO UPDATE SET score = excluded.score`,
		score.StageID, score.Week.Year, score.Week.Number, score.Score)
	if err != nil {
		return fmt.Errorf("upsert weekly score: %w", err)
	}
	return nil
}

func (r *ScoreRepository) ListWeeklyByStage(ctx context.Context, stageID string) ([]domain.WeeklyScore, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage_id, year, week_num, score FROM weekly_scores
		 WHERE stage_id = ? ORDER BY week_num ASC, year ASC`, stageID)
	if err != nil {
		return nil, fmt.Errorf("list weekly scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.WeeklyScore
	for rows.Next() {
		var w domain.WeeklyScore
		if err := rows.Scan(&w.StageID, &w.Week.Year, &w.Week.Number, &w.Score); err != nil {
			return nil, fmt.Errorf("scan weekly score: %w", err)
		}
		scores = append(scores, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate weekly scores: %w", err)
	}
	return scores, nil
}

func (r *ScoreRepository) DeleteWeeklyByStage(ctx context.Context, stageID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM weekly_scores WHERE stage_id = ?`, stageID); err != nil {
		return fmt.Errorf("delete weekly scores: %w", err)
	}
	return nil
}

func (r *ScoreRepository) listDaily(ctx context.Context, query string, args ...any) ([]domain.DailyScore, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list daily scores: %w", err)
	}
	defer rows.Close()

	var scores []domain.DailyScore
	for rows.Next() {
		var d domain.DailyScore
		var dateStr string
		if err := rows.Scan(&d.StageID, &dateStr, &d.Score); err != nil {
			return nil, fmt.Errorf("scan daily score: %w", err)
		}
		day, err := scanDay(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse daily score date: %w", err)
		}
		d.LogDate = day
		scores = append(scores, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily scores: %w", err)
	}
	return scores, nil
}

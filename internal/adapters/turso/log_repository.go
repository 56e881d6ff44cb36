package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"learnlog/internal/domain"
	"learnlog/internal/util"
)

type LogRepository struct {
	db DBTX
}

const logColumns = `id, stage_id, log_date, task, time_slot, notes, subcategory_id, duration_min, mood, created_at`

func (r *LogRepository) Create(ctx context.Context, entry *domain.LogEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO log_entries (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.StageID, domain.FormatDate(entry.LogDate),
		entry.Task, entry.TimeSlot, entry.Notes,
		util.NullStringPtr(entry.SubcategoryID),
		entry.DurationMin, entry.Mood,
		entry.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (r *LogRepository) GetByID(ctx context.Context, id string) (*domain.LogEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+logColumns+` FROM log_entries WHERE id = ?`, id)
	entry, err := scanLogEntry(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get log entry: %w", err)
	}
	return entry, nil
}

func (r *LogRepository) Update(ctx context.Context, entry *domain.LogEntry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE log_entries SET log_date = ?, task = ?, time_slot = ?, notes = ?,
		        subcategory_id = ?, duration_min = ?, mood = ?
		 WHERE id = ?`,
		domain.FormatDate(entry.LogDate), entry.Task, entry.TimeSlot, entry.Notes,
		util.NullStringPtr(entry.SubcategoryID), entry.DurationMin, entry.Mood,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update log entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("log entry %s not found", entry.ID)
	}
	return nil
}

func (r *LogRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM log_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete log entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("log entry %s not found", id)
	}
	return nil
}

func (r *LogRepository) ListByStageAndDate(ctx context.Context, stageID string, day time.Time) ([]domain.LogEntry, error) {
	return r.list(ctx,
		`SELECT `+logColumns+` FROM log_entries
		 WHERE stage_id = ? AND date(log_date) = date(?) ORDER BY created_at ASC, id ASC`,
		stageID, domain.FormatDate(day))
}

func (r *LogRepository) DistinctDates(ctx context.Context, stageID string) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT date(log_date) FROM log_entries WHERE stage_id = ? ORDER BY 1 ASC`,
		stageID)
	if err != nil {
		return nil, fmt.Errorf("distinct log dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan log date: %w", err)
		}
		d, err := scanDay(s)
		if err != nil {
			return nil, fmt.Errorf("parse log date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log dates: %w", err)
	}
	return dates, nil
}

func (r *LogRepository) EarliestDate(ctx context.Context, ownerID string) (*time.Time, error) {
	var s sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MIN(date(e.log_date)) FROM log_entries e
		 JOIN stages s ON s.id = e.stage_id
		 WHERE s.owner_id = ?`, ownerID).Scan(&s)
	if err != nil {
		return nil, fmt.Errorf("earliest log date: %w", err)
	}
	if !s.Valid {
		return nil, nil
	}
	d, err := scanDay(s.String)
	if err != nil {
		return nil, fmt.Errorf("parse earliest log date: %w", err)
	}
	return &d, nil
}

func (r *LogRepository) list(ctx context.Context, query string, args ...any) ([]domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		entry, err := scanLogEntry(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}

func scanLogEntry(scan func(dest ...any) error) (*domain.LogEntry, error) {
	var e domain.LogEntry
	var logDate, createdAt string
	var subcategory sql.NullString
	if err := scan(&e.ID, &e.StageID, &logDate, &e.Task, &e.TimeSlot, &e.Notes,
		&subcategory, &e.DurationMin, &e.Mood, &createdAt); err != nil {
		return nil, err
	}
	d, err := scanDay(logDate)
	if err != nil {
		return nil, fmt.Errorf("parse log_date: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	e.LogDate = d
	e.CreatedAt = created
	e.SubcategoryID = util.NullStringToPtr(subcategory)
	return &e, nil
}

package turso

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"learnlog/internal/domain"
)

type StageRepository struct {
	db DBTX
}

func (r *StageRepository) Create(ctx context.Context, stage *domain.Stage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stages (id, owner_id, name, start_date, created_at) VALUES (?, ?, ?, ?, ?)`,
		stage.ID, stage.OwnerID, stage.Name,
		domain.FormatDate(stage.StartDate),
		stage.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert stage: %w", err)
	}
	return nil
}

func (r *StageRepository) GetByID(ctx context.Context, id string) (*domain.Stage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, start_date, created_at FROM stages WHERE id = ?`, id)

	stage, err := scanStage(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stage %s: %w", id, domain.ErrStageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get stage: %w", err)
	}
	return stage, nil
}

func (r *StageRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Stage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, name, start_date, created_at FROM stages
		 WHERE owner_id = ? ORDER BY start_date ASC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	var stages []domain.Stage
	for rows.Next() {
		stage, err := scanStage(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, *stage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stages: %w", err)
	}
	return stages, nil
}

func (r *StageRepository) NextStartAfter(ctx context.Context, ownerID string, after time.Time) (*time.Time, error) {
	var startStr string
	err := r.db.QueryRowContext(ctx,
		`SELECT start_date FROM stages WHERE owner_id = ? AND date(start_date) > date(?)
		 ORDER BY start_date ASC LIMIT 1`,
		ownerID, domain.FormatDate(after)).Scan(&startStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next stage start: %w", err)
	}
	start, err := scanDay(startStr)
	if err != nil {
		return nil, fmt.Errorf("parse stage start: %w", err)
	}
	return &start, nil
}

func (r *StageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("stage %s: %w", id, domain.ErrStageNotFound)
	}
	return nil
}

func scanStage(scan func(dest ...any) error) (*domain.Stage, error) {
	var s domain.Stage
	var startDate, createdAt string
	if err := scan(&s.ID, &s.OwnerID, &s.Name, &startDate, &createdAt); err != nil {
		return nil, err
	}
	start, err := scanDay(startDate)
	if err != nil {
		return nil, fmt.Errorf("parse stage start_date: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse stage created_at: %w", err)
	}
	s.StartDate = start
	s.CreatedAt = created
	return &s, nil
}

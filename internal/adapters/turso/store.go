package turso

import (
	"context"
	"database/sql"
	"fmt"

	"learnlog/internal/ports"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx, so every repository works
// unchanged inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repositories struct {
	users      *UserRepository
	stages     *StageRepository
	logs       *LogRepository
	scores     *ScoreRepository
	categories *CategoryRepository
	stats      *StatsRepository
}

func newRepositories(db DBTX) repositories {
	return repositories{
		users:      &UserRepository{db: db},
		stages:     &StageRepository{db: db},
		logs:       &LogRepository{db: db},
		scores:     &ScoreRepository{db: db},
		categories: &CategoryRepository{db: db},
		stats:      &StatsRepository{db: db},
	}
}

func (r repositories) Users() ports.UserRepository          { return r.users }
func (r repositories) Stages() ports.StageRepository        { return r.stages }
func (r repositories) Logs() ports.LogRepository            { return r.logs }
func (r repositories) Scores() ports.ScoreRepository        { return r.scores }
func (r repositories) Categories() ports.CategoryRepository { return r.categories }
func (r repositories) Stats() ports.StatsRepository         { return r.stats }

// Store is the root ports.Store implementation.
type Store struct {
	repositories
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{repositories: newRepositories(db), db: db}
}

// WithinTx runs fn against transaction-bound repositories. The transaction
// commits only when fn returns nil; any error rolls everything back, so a
// mutation and its derived-score recomputation land atomically or not at all.
func (s *Store) WithinTx(ctx context.Context, fn func(ports.Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	done := false
	defer func() {
		if !done {
			_ = tx.Rollback()
		}
	}()

	if err := fn(newRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	done = true
	return nil
}

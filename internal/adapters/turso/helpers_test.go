package turso

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"learnlog/internal/domain"
	"learnlog/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrate.RunAll(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testDB(t))
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func seedUser(t *testing.T, store *Store) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:        uuid.NewString(),
		Username:  "user-" + uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedStage(t *testing.T, store *Store, ownerID, name, start string) *domain.Stage {
	t.Helper()
	stage := &domain.Stage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		StartDate: day(t, start),
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Stages().Create(context.Background(), stage); err != nil {
		t.Fatalf("seed stage: %v", err)
	}
	return stage
}

func seedLog(t *testing.T, store *Store, stageID, date string, durationMin, mood int) *domain.LogEntry {
	t.Helper()
	entry := &domain.LogEntry{
		ID:          uuid.NewString(),
		StageID:     stageID,
		LogDate:     day(t, date),
		Task:        "reading",
		TimeSlot:    "morning",
		DurationMin: durationMin,
		Mood:        mood,
		CreatedAt:   time.Now().UTC(),
	}
	if err := store.Logs().Create(context.Background(), entry); err != nil {
		t.Fatalf("seed log entry: %v", err)
	}
	return entry
}

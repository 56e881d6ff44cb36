package records

import (
	"context"
	"database/sql"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"

	"learnlog/internal/adapters/turso"
	"learnlog/internal/domain"
	"learnlog/internal/migrate"
	"learnlog/internal/ports"
	"learnlog/internal/recalc"
)

func testService(t *testing.T, today string) (*Service, *turso.Store) {
	t.Helper()
	svc, store, _ := testServiceWithEngine(t, today)
	return svc, store
}

func testServiceWithEngine(t *testing.T, today string) (*Service, *turso.Store, *recalc.Engine) {
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

	store := turso.NewStore(db)
	now := day(t, today)
	engine := recalc.New(recalc.WithClock(func() time.Time { return now }))
	return NewService(store, engine), store, engine
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func seedUser(t *testing.T, store *turso.Store) *domain.User {
	t.Helper()
	user := &domain.User{ID: uuid.NewString(), Username: "user-" + uuid.NewString(), CreatedAt: time.Now().UTC()}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func weeklyScore(t *testing.T, store *turso.Store, stageID string, week domain.WeekRef) float64 {
	t.Helper()
	rows, err := store.Scores().ListWeeklyByStage(context.Background(), stageID)
	if err != nil {
		t.Fatalf("list weekly scores: %v", err)
	}
	for _, row := range rows {
		if row.Week == week {
			return row.Score
		}
	}
	t.Fatalf("no weekly score for %s", week.Label())
	return 0
}

func TestAddLogWritesDerivedScores(t *testing.T) {
	svc, store := testService(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	stage := &domain.Stage{OwnerID: user.ID, Name: "fundamentals", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, stage); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}
	if stage.ID == "" {
		t.Fatal("CreateStage() did not assign an id")
	}

	entry := &domain.LogEntry{StageID: stage.ID, LogDate: day(t, "2024-01-03"), Task: "reading", DurationMin: 60, Mood: 4}
	if err := svc.AddLog(ctx, entry); err != nil {
		t.Fatalf("AddLog() error = %v", err)
	}

	daily, err := store.Scores().ListDailyByStage(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListDailyByStage() error = %v", err)
	}
	if len(daily) != 1 {
		t.Fatalf("got %d daily rows, want 1", len(daily))
	}
	want := 4 * math.Log(2)
	if math.Abs(daily[0].Score-want) > 1e-9 {
		t.Errorf("daily score = %v, want %v", daily[0].Score, want)
	}

	got := weeklyScore(t, store, stage.ID, domain.WeekRef{Year: 2024, Number: 1})
	if math.Abs(got-want/7) > 1e-9 {
		t.Errorf("weekly score = %v, want %v", got, want/7)
	}
}

func TestAddLogDefaultsMood(t *testing.T) {
	svc, store := testService(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	stage := &domain.Stage{OwnerID: user.ID, Name: "fundamentals", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, stage); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}

	entry := &domain.LogEntry{StageID: stage.ID, LogDate: day(t, "2024-01-03"), DurationMin: 60}
	if err := svc.AddLog(ctx, entry); err != nil {
		t.Fatalf("AddLog() error = %v", err)
	}

	got, err := store.Logs().GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Mood != domain.MoodDefault {
		t.Errorf("Mood = %d, want neutral default %d", got.Mood, domain.MoodDefault)
	}
}

func TestUpdateLogRejectsStageChange(t *testing.T) {
	svc, store := testService(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	first := &domain.Stage{OwnerID: user.ID, Name: "first", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, first); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}
	second := &domain.Stage{OwnerID: user.ID, Name: "second", StartDate: day(t, "2024-01-08")}
	if err := svc.CreateStage(ctx, second); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}

	entry := &domain.LogEntry{StageID: first.ID, LogDate: day(t, "2024-01-03"), DurationMin: 60, Mood: 4}
	if err := svc.AddLog(ctx, entry); err != nil {
		t.Fatalf("AddLog() error = %v", err)
	}

	entry.StageID = second.ID
	if err := svc.UpdateLog(ctx, entry); err == nil {
		t.Error("UpdateLog() moving an entry across stages should fail")
	}
}

// Inserting a stage shortens its predecessor, so the predecessor's clipped
// weeks must be recomputed in the same operation.
func TestCreateStageRebuildsPredecessor(t *testing.T) {
	svc, store := testService(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	first := &domain.Stage{OwnerID: user.ID, Name: "first", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, first); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}

	dailyScore := 4 * math.Log(2)
	for _, date := range []string{"2024-01-08", "2024-01-09"} {
		entry := &domain.LogEntry{StageID: first.ID, LogDate: day(t, date), DurationMin: 60, Mood: 4}
		if err := svc.AddLog(ctx, entry); err != nil {
			t.Fatalf("AddLog(%s) error = %v", date, err)
		}
	}

	// Week 2 of the open-ended stage spans Jan 8-14: seven effective days.
	week2 := domain.WeekRef{Year: 2024, Number: 2}
	got := weeklyScore(t, store, first.ID, week2)
	if want := 2 * dailyScore / 7; math.Abs(got-want) > 1e-9 {
		t.Fatalf("weekly score before split = %v, want %v", got, want)
	}

	// A new stage starting Jan 10 cuts week 2 down to Jan 8-9.
	second := &domain.Stage{OwnerID: user.ID, Name: "second", StartDate: day(t, "2024-01-10")}
	if err := svc.CreateStage(ctx, second); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}

	got = weeklyScore(t, store, first.ID, week2)
	if want := 2 * dailyScore / 2; math.Abs(got-want) > 1e-9 {
		t.Errorf("weekly score after split = %v, want %v (2 effective days)", got, want)
	}
}

func TestDeleteStageRebuildsPredecessor(t *testing.T) {
	svc, store := testService(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	first := &domain.Stage{OwnerID: user.ID, Name: "first", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, first); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}
	second := &domain.Stage{OwnerID: user.ID, Name: "second", StartDate: day(t, "2024-01-10")}
	if err := svc.CreateStage(ctx, second); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}

	dailyScore := 4 * math.Log(2)
	for _, date := range []string{"2024-01-08", "2024-01-09"} {
		entry := &domain.LogEntry{StageID: first.ID, LogDate: day(t, date), DurationMin: 60, Mood: 4}
		if err := svc.AddLog(ctx, entry); err != nil {
			t.Fatalf("AddLog(%s) error = %v", date, err)
		}
	}

	week2 := domain.WeekRef{Year: 2024, Number: 2}
	got := weeklyScore(t, store, first.ID, week2)
	if want := 2 * dailyScore / 2; math.Abs(got-want) > 1e-9 {
		t.Fatalf("weekly score while split = %v, want %v", got, want)
	}

	// Removing the successor re-extends the first stage through today.
	if err := svc.DeleteStage(ctx, second.ID); err != nil {
		t.Fatalf("DeleteStage() error = %v", err)
	}

	got = weeklyScore(t, store, first.ID, week2)
	if want := 2 * dailyScore / 7; math.Abs(got-want) > 1e-9 {
		t.Errorf("weekly score after merge = %v, want %v (7 effective days)", got, want)
	}
}

// A delete must recompute the date the entry holds when the delete runs,
// not the date seen by the pre-lock read.
func TestDeleteLogRecomputesMovedDate(t *testing.T) {
	svc, store, engine := testServiceWithEngine(t, "2024-01-15")
	ctx := context.Background()
	user := seedUser(t, store)

	stage := &domain.Stage{OwnerID: user.ID, Name: "fundamentals", StartDate: day(t, "2024-01-01")}
	if err := svc.CreateStage(ctx, stage); err != nil {
		t.Fatalf("CreateStage() error = %v", err)
	}
	entry := &domain.LogEntry{StageID: stage.ID, LogDate: day(t, "2024-01-03"), DurationMin: 60, Mood: 4}
	if err := svc.AddLog(ctx, entry); err != nil {
		t.Fatalf("AddLog() error = %v", err)
	}

	deleted := make(chan error, 1)
	err := engine.WithStageLock(stage.ID, func() error {
		// The delete pre-reads the entry, then blocks on the stage lock.
		go func() { deleted <- svc.DeleteLog(ctx, entry.ID) }()
		time.Sleep(100 * time.Millisecond)

		// Move the entry to another date while the delete is waiting.
		moved := *entry
		moved.LogDate = day(t, "2024-01-05")
		return store.WithinTx(ctx, func(r ports.Repositories) error {
			if err := r.Logs().Update(ctx, &moved); err != nil {
				return err
			}
			return engine.OnLogUpdated(ctx, r, &moved, entry.LogDate)
		})
	})
	if err != nil {
		t.Fatalf("move under lock: %v", err)
	}
	if err := <-deleted; err != nil {
		t.Fatalf("DeleteLog() error = %v", err)
	}

	daily, err := store.Scores().ListDailyByStage(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListDailyByStage() error = %v", err)
	}
	if len(daily) == 0 {
		t.Fatal("no daily rows after move and delete")
	}
	for _, row := range daily {
		if row.Score != 0 {
			t.Errorf("daily %s = %v after delete, want 0", domain.FormatDate(row.LogDate), row.Score)
		}
	}
}

func TestDeleteLogMissing(t *testing.T) {
	svc, _ := testService(t, "2024-01-15")
	if err := svc.DeleteLog(context.Background(), "no-such-entry"); err == nil {
		t.Error("DeleteLog() of a missing entry should fail")
	}
}

package turso

import (
	"context"
	"math"
	"testing"

	"learnlog/internal/domain"
)

func TestScoreRepositoryUpsertDailyOverwrites(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	stage := seedStage(t, store, user.ID, "fundamentals", "2024-01-01")

	score := domain.DailyScore{StageID: stage.ID, LogDate: day(t, "2024-01-05"), Score: 2.5}
	if err := store.Scores().UpsertDaily(ctx, score); err != nil {
		t.Fatalf("UpsertDaily() error = %v", err)
	}
	score.Score = 3.75
	if err := store.Scores().UpsertDaily(ctx, score); err != nil {
		t.Fatalf("UpsertDaily() second write error = %v", err)
	}

	scores, err := store.Scores().ListDailyByStage(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListDailyByStage() error = %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("got %d rows after upsert, want 1", len(scores))
	}
	if scores[0].Score != 3.75 {
		t.Errorf("Score = %v, want 3.75", scores[0].Score)
	}
}

func TestScoreRepositorySumDailyRange(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	stage := seedStage(t, store, user.ID, "fundamentals", "2024-01-01")

	for _, row := range []struct {
		date  string
		score float64
	}{
		{"2024-01-01", 1.0},
		{"2024-01-03", 2.0},
		{"2024-01-07", 4.0},
		{"2024-01-08", 8.0}, // outside the queried window
	} {
		err := store.Scores().UpsertDaily(ctx, domain.DailyScore{
			StageID: stage.ID, LogDate: day(t, row.date), Score: row.score,
		})
		if err != nil {
			t.Fatalf("UpsertDaily(%s) error = %v", row.date, err)
		}
	}

	sum, err := store.Scores().SumDailyRange(ctx, stage.ID, day(t, "2024-01-01"), day(t, "2024-01-07"))
	if err != nil {
		t.Fatalf("SumDailyRange() error = %v", err)
	}
	if math.Abs(sum-7.0) > 1e-9 {
		t.Errorf("SumDailyRange() = %v, want 7.0", sum)
	}

	sum, err = store.Scores().SumDailyRange(ctx, stage.ID, day(t, "2024-02-01"), day(t, "2024-02-07"))
	if err != nil {
		t.Fatalf("SumDailyRange() empty window error = %v", err)
	}
	if sum != 0 {
		t.Errorf("SumDailyRange() over empty window = %v, want 0", sum)
	}
}

func TestScoreRepositoryDailyDates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	stage := seedStage(t, store, user.ID, "fundamentals", "2024-01-01")

	for _, date := range []string{"2024-01-05", "2024-01-02"} {
		err := store.Scores().UpsertDaily(ctx, domain.DailyScore{
			StageID: stage.ID, LogDate: day(t, date), Score: 0,
		})
		if err != nil {
			t.Fatalf("UpsertDaily(%s) error = %v", date, err)
		}
	}

	dates, err := store.Scores().DailyDates(ctx, stage.ID)
	if err != nil {
		t.Fatalf("DailyDates() error = %v", err)
	}
	if len(dates) != 2 {
		t.Fatalf("got %d dates, want 2", len(dates))
	}
	if !dates[0].Equal(day(t, "2024-01-02")) {
		t.Errorf("dates[0] = %v, want 2024-01-02", dates[0])
	}
}

func TestScoreRepositoryWeeklyRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	stage := seedStage(t, store, user.ID, "fundamentals", "2024-01-01")

	score := domain.WeeklyScore{
		StageID: stage.ID,
		Week:    domain.WeekRef{Year: 2024, Number: 3},
		Score:   1.5,
	}
	if err := store.Scores().UpsertWeekly(ctx, score); err != nil {
		t.Fatalf("UpsertWeekly() error = %v", err)
	}
	score.Score = 2.25
	if err := store.Scores().UpsertWeekly(ctx, score); err != nil {
		t.Fatalf("UpsertWeekly() second write error = %v", err)
	}

	rows, err := store.Scores().ListWeeklyByStage(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListWeeklyByStage() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows after upsert, want 1", len(rows))
	}
	if rows[0].Week != (domain.WeekRef{Year: 2024, Number: 3}) {
		t.Errorf("Week = %+v, want {2024 3}", rows[0].Week)
	}
	if rows[0].Score != 2.25 {
		t.Errorf("Score = %v, want 2.25", rows[0].Score)
	}
}

func TestScoreRepositoryDeleteByStage(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	user := seedUser(t, store)
	stage := seedStage(t, store, user.ID, "fundamentals", "2024-01-01")
	other := seedStage(t, store, user.ID, "other", "2024-03-04")

	for _, st := range []string{stage.ID, other.ID} {
		if err := store.Scores().UpsertDaily(ctx, domain.DailyScore{
			StageID: st, LogDate: day(t, "2024-01-05"), Score: 1,
		}); err != nil {
			t.Fatalf("UpsertDaily() error = %v", err)
		}
		if err := store.Scores().UpsertWeekly(ctx, domain.WeeklyScore{
			StageID: st, Week: domain.WeekRef{Year: 2024, Number: 1}, Score: 1,
		}); err != nil {
			t.Fatalf("UpsertWeekly() error = %v", err)
		}
	}

	if err := store.Scores().DeleteDailyByStage(ctx, stage.ID); err != nil {
		t.Fatalf("DeleteDailyByStage() error = %v", err)
	}
	if err := store.Scores().DeleteWeeklyByStage(ctx, stage.ID); err != nil {
		t.Fatalf("DeleteWeeklyByStage() error = %v", err)
	}

	daily, err := store.Scores().ListDailyByStage(ctx, stage.ID)
	if err != nil {
		t.Fatalf("ListDailyByStage() error = %v", err)
	}
	if len(daily) != 0 {
		t.Errorf("%d daily rows survived delete", len(daily))
	}

	// The other stage's rows are untouched.
	otherDaily, err := store.Scores().ListDailyByStage(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListDailyByStage(other) error = %v", err)
	}
	if len(otherDaily) != 1 {
		t.Errorf("other stage has %d daily rows, want 1", len(otherDaily))
	}
}

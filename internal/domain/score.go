package domain

import (
	"math"
	"time"
)

// DailyScore is the derived productivity value for one (stage, date).
// Exactly one row exists per day that has log entries or ever had them;
// a day whose entries sum to zero duration scores 0 but keeps its row.
type DailyScore struct {
	StageID string
	LogDate time.Time
	Score   float64
}

// WeeklyScore is the derived value for one (stage, year, week) bucket.
type WeeklyScore struct {
	StageID string
	Week    WeekRef
	Score   float64
}

// ScoreDay reduces all entries logged on one date into a single scalar.
// The score is the duration-weighted mean mood (quality, bounded 1-5)
// multiplied by ln(1 + hours) (quantity, concave), so both consistent
// focus and long sessions count, with diminishing credit for marathon days.
func ScoreDay(entries []LogEntry) float64 {
	var totalMin int
	var moodWeighted float64
	for _, e := range entries {
		totalMin += e.DurationMin
		moodWeighted += float64(e.DurationMin) * float64(e.Mood)
	}
	if totalMin == 0 {
		return 0
	}
	avgMood := moodWeighted / float64(totalMin)
	hours := float64(totalMin) / 60.0
	return avgMood * math.Log(1+hours)
}

// ScoreWeek averages the daily scores that fall inside one week bucket of
// the stage. dailySum must be the sum of daily scores over the effective
// window reported by Stage.WeekWindow for the same arguments; the variable
// denominator keeps partial first weeks and the in-progress current week
// from being diluted by days outside the stage's lifetime.
func ScoreWeek(dailySum float64, effectiveDays int) float64 {
	if effectiveDays <= 0 {
		return 0
	}
	return dailySum / float64(effectiveDays)
}

package domain

import "time"

// Mood bounds. 3 is the neutral default applied when a log is recorded
// without an explicit mood.
const (
	MoodMin     = 1
	MoodMax     = 5
	MoodDefault = 3
)

// LogEntry is one raw study record: what was done, for how long, and how it
// felt. Identity is immutable; everything else can be edited, including the
// date, which may move the entry across days or week buckets.
type LogEntry struct {
	ID            string
	StageID       string
	LogDate       time.Time
	Task          string
	TimeSlot      string
	Notes         string
	SubcategoryID *string
	DurationMin   int
	Mood          int
	CreatedAt     time.Time
}

// Normalize clamps the mood into range, substituting the neutral default
// for unset (zero) values, and floors negative durations at zero.
func (e *LogEntry) Normalize() {
	if e.Mood == 0 {
		e.Mood = MoodDefault
	}
	if e.Mood < MoodMin {
		e.Mood = MoodMin
	}
	if e.Mood > MoodMax {
		e.Mood = MoodMax
	}
	if e.DurationMin < 0 {
		e.DurationMin = 0
	}
	e.LogDate = Day(e.LogDate)
}

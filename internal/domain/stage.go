package domain

import (
	"errors"
	"time"
)

// ErrStageNotFound is returned when an operation references a stage that
// does not exist (or was deleted). Computing week indexes against a missing
// anchor is a programming error and must fail loudly.
var ErrStageNotFound = errors.New("stage not found")

// Stage is a user-defined study period with its own week-numbering anchor.
// Stages partition the owner's timeline: a stage ends the day before the
// next stage starts, and the latest stage runs through today.
type Stage struct {
	ID        string
	OwnerID   string
	Name      string
	StartDate time.Time
	CreatedAt time.Time
}

// EndDate resolves the stage's implicit end. nextStart is the start date of
// the chronologically next stage owned by the same user, or nil when this is
// the latest stage.
func (s Stage) EndDate(nextStart *time.Time, today time.Time) time.Time {
	if nextStart == nil {
		return Day(today)
	}
	return Day(*nextStart).AddDate(0, 0, -1)
}

// WeekWindow computes the effective day span of one week bucket within the
// stage. The theoretical seven-day window is clipped to the stage's lifetime
// and to today, so a stage that starts mid-week or a week still in progress
// is averaged over the days it actually covers. Days returns 0 when the
// window lies entirely outside the stage.
func (s Stage) WeekWindow(weekNumber int, stageEnd, today time.Time) (start, end time.Time, days int) {
	theoStart := Day(s.StartDate).AddDate(0, 0, 7*(weekNumber-1))
	theoEnd := theoStart.AddDate(0, 0, 6)

	start = MaxDay(theoStart, Day(s.StartDate))
	end = MinDay(MinDay(theoEnd, Day(stageEnd)), Day(today))

	days = DaysBetween(start, end) + 1
	if days < 0 {
		days = 0
	}
	return start, end, days
}

package domain

import (
	"fmt"
	"time"
)

// WeekRef identifies one week bucket under a stage's custom weekly grid.
// Year is the calendar year of the log date, not the anchor's year, so week
// numbers keep counting across a year boundary instead of resetting.
type WeekRef struct {
	Year   int
	Number int
}

// Label renders the bucket for chart axes, e.g. "2024-W05".
func (w WeekRef) Label() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// WeekOf maps a date onto the custom weekly grid anchored at anchor.
// Week 1 starts on the anchor date itself; every 7 days begin the next week.
// Dates before the anchor collapse into the anchor's first bucket rather
// than erroring, matching how imported historical rows are bucketed.
func WeekOf(date, anchor time.Time) WeekRef {
	daysDiff := DaysBetween(anchor, date)
	if daysDiff < 0 {
		return WeekRef{Year: anchor.Year(), Number: 1}
	}
	return WeekRef{Year: date.Year(), Number: daysDiff/7 + 1}
}

package domain

import "time"

// DateLayout is the canonical on-disk date format. SQLite stores dates as
// TEXT, so every date column round-trips through this layout.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date string into a UTC-midnight time.Time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders a date as ISO YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// Day truncates a timestamp to its calendar day at UTC midnight.
// All date arithmetic in this package assumes values produced here,
// which keeps DaysBetween exact (no DST in UTC).
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns b - a in whole days. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// MinDay returns the earlier of two days.
func MinDay(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDay returns the later of two days.
func MaxDay(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

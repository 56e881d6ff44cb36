package domain

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekOf(t *testing.T) {
	anchor := date(2024, time.January, 1)

	tests := []struct {
		name     string
		day      time.Time
		expected WeekRef
	}{
		{"anchor day is week 1", anchor, WeekRef{2024, 1}},
		{"sixth day still week 1", date(2024, time.January, 7), WeekRef{2024, 1}},
		{"seventh day rolls to week 2", date(2024, time.January, 8), WeekRef{2024, 2}},
		{"before anchor collapses to week 1", date(2023, time.December, 31), WeekRef{2024, 1}},
		{"far before anchor collapses to week 1", date(2022, time.June, 1), WeekRef{2024, 1}},
		{"week number survives year boundary", date(2025, time.January, 2), WeekRef{2025, 53}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekOf(tt.day, anchor)
			if got != tt.expected {
				t.Errorf("WeekOf(%s): expected %v, got %v", FormatDate(tt.day), tt.expected, got)
			}
		})
	}
}

func TestWeekOf_YearIsCalendarYear(t *testing.T) {
	// Anchor late in the year: week 2 falls in the next calendar year.
	anchor := date(2023, time.December, 28)
	got := WeekOf(date(2024, time.January, 4), anchor)
	if got != (WeekRef{2024, 2}) {
		t.Errorf("expected {2024 2}, got %v", got)
	}
}

func TestWeekRefLabel(t *testing.T) {
	if got := (WeekRef{2024, 5}).Label(); got != "2024-W05" {
		t.Errorf("expected 2024-W05, got %s", got)
	}
	if got := (WeekRef{2024, 17}).Label(); got != "2024-W17" {
		t.Errorf("expected 2024-W17, got %s", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := date(2024, time.March, 1)
	if d := DaysBetween(a, date(2024, time.March, 8)); d != 7 {
		t.Errorf("expected 7, got %d", d)
	}
	if d := DaysBetween(a, date(2024, time.February, 28)); d != -2 {
		t.Errorf("expected -2, got %d", d)
	}
	if d := DaysBetween(a, a); d != 0 {
		t.Errorf("expected 0, got %d", d)
	}
}

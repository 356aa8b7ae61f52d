package timeutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.Local)
	got := StartOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	a := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	b := time.Date(2026, 3, 1, 18, 30, 0, 0, time.Local)
	c := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

	if !SameDay(a, b) {
		t.Fatalf("expected same day for %v and %v", a, b)
	}
	if SameDay(a, c) {
		t.Fatalf("expected different days for %v and %v", a, c)
	}
}

func TestMinutesFromMidnight(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 13, 25, 0, 0, time.Local)
	if got := MinutesFromMidnight(input); got != 805 {
		t.Fatalf("expected 805, got %d", got)
	}
}

func TestParseDayRange(t *testing.T) {
	t.Parallel()

	start, end, err := ParseDayRange("2025-01-01", "2025-01-31", time.UTC)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	if !start.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected exclusive end on the next day, got %v", end)
	}

	start, end, err = ParseDayRange("2025-03-04", "", time.UTC)
	if err != nil {
		t.Fatalf("parse single day: %v", err)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("expected a single day range, got %v - %v", start, end)
	}

	if _, _, err := ParseDayRange("2025-01-31", "2025-01-01", time.UTC); err == nil {
		t.Fatalf("expected reversed range to fail")
	}
	if _, _, err := ParseDayRange("01.02.2025", "", time.UTC); err == nil {
		t.Fatalf("expected invalid layout to fail")
	}
}

func TestFormatSeconds(t *testing.T) {
	t.Parallel()

	tests := map[int64]string{
		0:     "0:00",
		59:    "0:00",
		3600:  "1:00",
		5400:  "1:30",
		36000: "10:00",
		-1:    "0:00",
	}
	for input, want := range tests {
		if got := FormatSeconds(input); got != want {
			t.Fatalf("FormatSeconds(%d) = %q, want %q", input, got, want)
		}
	}
}

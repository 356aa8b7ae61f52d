package timeutil

import (
	"fmt"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func MinutesFromMidnight(value time.Time) int {
	return value.Hour()*60 + value.Minute()
}

// ParseDay parses a YYYY-MM-DD day at midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	parsed, err := time.ParseInLocation(DayLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q (expected YYYY-MM-DD): %w", value, err)
	}
	return parsed, nil
}

// ParseDayRange turns an inclusive from/to day pair into the half-open
// interval [from 00:00, to+1 00:00). An empty to means the same day as from.
func ParseDayRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseDay(from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	last := start
	if strings.TrimSpace(to) != "" {
		last, err = ParseDay(to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if last.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range: %s is before %s", last.Format(DayLayout), start.Format(DayLayout))
	}
	return start, last.AddDate(0, 0, 1), nil
}

// FormatSeconds renders a duration in seconds as H:MM.
func FormatSeconds(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

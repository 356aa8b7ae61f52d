package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"togglassistant/internal/timeutil"
	"togglassistant/timeentry"
)

type DailySummary struct {
	Date          string
	StartDateTime time.Time
	EndDateTime   time.Time
	TrackedHours  float64
	BillableHours float64
	BreakHours    float64
	// OverlapHours is tracked time counted more than once because entries
	// overlap.
	OverlapHours float64
	EntryCount   int
}

type interval struct {
	start time.Time
	end   time.Time
}

// BuildDailySummaries groups finished entries by their start day in loc.
// Running entries have no stop and are left out.
func BuildDailySummaries(entries []timeentry.Entry, loc *time.Location) []DailySummary {
	if loc == nil {
		loc = time.Local
	}

	byDay := make(map[string][]interval)
	billable := make(map[string]time.Duration)
	for _, entry := range entries {
		stop, ok := entry.ComputedStop()
		if !ok {
			continue
		}
		day := entry.Start.In(loc).Format(timeutil.DayLayout)
		byDay[day] = append(byDay[day], interval{start: entry.Start.In(loc), end: stop.In(loc)})
		if entry.Billable {
			billable[day] += stop.Sub(entry.Start)
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	summaries := make([]DailySummary, 0, len(days))
	for _, day := range days {
		summaries = append(summaries, summarizeDay(day, byDay[day], billable[day]))
	}
	return summaries
}

func summarizeDay(day string, intervals []interval, billable time.Duration) DailySummary {
	sort.Slice(intervals, func(i, j int) bool {
		if intervals[i].start.Equal(intervals[j].start) {
			return intervals[i].end.Before(intervals[j].end)
		}
		return intervals[i].start.Before(intervals[j].start)
	})

	start := intervals[0].start
	end := start
	tracked := time.Duration(0)
	for _, candidate := range intervals {
		tracked += candidate.end.Sub(candidate.start)
		if candidate.end.After(end) {
			end = candidate.end
		}
	}

	covered := mergedCoverage(intervals)
	breakDuration := end.Sub(start) - covered
	if breakDuration < 0 {
		breakDuration = 0
	}

	return DailySummary{
		Date:          day,
		StartDateTime: start,
		EndDateTime:   end,
		TrackedHours:  roundHours(tracked.Hours()),
		BillableHours: roundHours(billable.Hours()),
		BreakHours:    roundHours(breakDuration.Hours()),
		OverlapHours:  roundHours((tracked - covered).Hours()),
		EntryCount:    len(intervals),
	}
}

// mergedCoverage expects intervals sorted by start.
func mergedCoverage(intervals []interval) time.Duration {
	if len(intervals) == 0 {
		return 0
	}

	currentStart := intervals[0].start
	currentEnd := intervals[0].end
	covered := time.Duration(0)

	for _, candidate := range intervals[1:] {
		if candidate.start.After(currentEnd) {
			covered += currentEnd.Sub(currentStart)
			currentStart = candidate.start
			currentEnd = candidate.end
			continue
		}
		if candidate.end.After(currentEnd) {
			currentEnd = candidate.end
		}
	}

	covered += currentEnd.Sub(currentStart)
	return covered
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}

var summaryHeaders = []string{"Date", "StartTime", "EndTime", "TrackedHours", "BillableHours", "BreakHours", "OverlapHours", "EntryCount"}

func summaryValues(summary DailySummary) []string {
	return []string{
		summary.Date,
		summary.StartDateTime.Format("15:04"),
		summary.EndDateTime.Format("15:04"),
		fmt.Sprintf("%.2f", summary.TrackedHours),
		fmt.Sprintf("%.2f", summary.BillableHours),
		fmt.Sprintf("%.2f", summary.BreakHours),
		fmt.Sprintf("%.2f", summary.OverlapHours),
		strconv.Itoa(summary.EntryCount),
	}
}

func WriteDailySummaries(path, format string, summaries []DailySummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, summaryValues(summary))
	}

	switch normalizeFormat(format) {
	case "csv":
		return writeCSV(path, summaryHeaders, rows)
	case "excel", "xlsx":
		return writeExcel(path, summariesSheet, summaryHeaders, rows)
	default:
		return fmt.Errorf("unsupported output format for daily summaries: %s", format)
	}
}

package importer

import (
	"fmt"

	"togglassistant/timeentry"
)

// TogglMapper reads the detailed CSV export of Toggl Track, with separate
// start/end date and time columns and an HH:MM:SS duration.
type TogglMapper struct{}

func (m *TogglMapper) Name() string {
	return "toggl"
}

func (m *TogglMapper) Map(record Record, ctx MapContext) (timeentry.Fields, bool, error) {
	startDate := record.Get("start date", "startdate")
	startTime := record.Get("start time", "starttime")
	if startDate == "" && startTime == "" {
		return timeentry.Fields{}, false, nil
	}

	loc := location(ctx)
	start, err := parseDateAndTime(startDate, startTime, loc)
	if err != nil {
		return timeentry.Fields{}, false, fmt.Errorf("row %d: parse start: %w", record.RowNumber, err)
	}

	fields := timeentry.Fields{
		Start:       start,
		Description: timeentry.StringPtr(record.Get("description")),
	}

	switch {
	case record.Get("duration") != "":
		fields.Duration, err = parseDurationSeconds(record.Get("duration"))
		if err != nil {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: %w", record.RowNumber, err)
		}
	case record.Get("end date", "enddate") != "" || record.Get("end time", "endtime") != "":
		end, err := parseDateAndTime(record.Get("end date", "enddate"), record.Get("end time", "endtime"), loc)
		if err != nil {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: parse end: %w", record.RowNumber, err)
		}
		if end.Before(start) {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: end must not be before start", record.RowNumber)
		}
		fields.Duration = int64(end.Sub(start).Seconds())
	default:
		fields.Duration = timeentry.RunningDuration
	}

	fields, err = finishFields(record, ctx, fields)
	if err != nil {
		return timeentry.Fields{}, false, err
	}
	return fields, true, nil
}

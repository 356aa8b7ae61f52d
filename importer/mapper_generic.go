package importer

import (
	"fmt"

	"togglassistant/timeentry"
)

// GenericMapper reads one start datetime column plus either an end datetime
// or a duration. Rows without a start are skipped.
type GenericMapper struct{}

func (m *GenericMapper) Name() string {
	return "generic"
}

func (m *GenericMapper) Map(record Record, ctx MapContext) (timeentry.Fields, bool, error) {
	rawStart := record.Get("startdatetime", "start", "von")
	if rawStart == "" {
		return timeentry.Fields{}, false, nil
	}

	loc := location(ctx)
	start, err := parseDateTime(rawStart, loc)
	if err != nil {
		return timeentry.Fields{}, false, fmt.Errorf("row %d: parse start datetime: %w", record.RowNumber, err)
	}

	fields := timeentry.Fields{
		Start:       start,
		Duration:    timeentry.RunningDuration,
		Description: timeentry.StringPtr(record.Get("description", "beschreibung")),
	}

	if rawEnd := record.Get("enddatetime", "stop", "end", "bis"); rawEnd != "" {
		end, err := parseDateTime(rawEnd, loc)
		if err != nil {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: parse end datetime: %w", record.RowNumber, err)
		}
		if end.Before(start) {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: end datetime must not be before start datetime", record.RowNumber)
		}
		fields.Duration = int64(end.Sub(start).Seconds())
	}

	if value := record.Get("duration", "hours", "dauer"); value != "" {
		seconds, err := parseDurationSeconds(value)
		if err != nil {
			return timeentry.Fields{}, false, fmt.Errorf("row %d: parse duration: %w", record.RowNumber, err)
		}
		fields.Duration = seconds
	}

	fields, err = finishFields(record, ctx, fields)
	if err != nil {
		return timeentry.Fields{}, false, err
	}
	return fields, true, nil
}

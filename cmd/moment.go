package cmd

import (
	"fmt"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"

	"togglassistant/timeentry"
)

// parseMoment accepts an RFC 3339 timestamp or a natural expression such as
// "2 hours ago" or "yesterday at 9am", resolved against now. Natural
// expressions take the location of now. Results are truncated to whole
// seconds, the resolution of entry durations.
func parseMoment(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	if parsed, err := timeentry.ParseTimestamp(value); err == nil {
		return parsed.Truncate(time.Second), nil
	}
	if strings.EqualFold(value, "now") {
		return now.Truncate(time.Second), nil
	}

	parsed, err := naturaldate.Parse(value, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil || parsed.Equal(now) {
		return time.Time{}, fmt.Errorf("cannot parse time %q (use RFC 3339 like 2025-01-10T09:00:00+01:00 or an expression like \"2 hours ago\")", value)
	}
	return parsed.Truncate(time.Second), nil
}

package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// parseDurationSeconds accepts HH:MM:SS, H:MM or decimal hours (dot or
// German comma).
func parseDurationSeconds(raw string) (int64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, nil
	}

	if strings.Contains(cleaned, ":") {
		parts := strings.Split(cleaned, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return 0, fmt.Errorf("parse duration %q: expected H:MM or HH:MM:SS", raw)
		}
		var total int64
		multipliers := []int64{3600, 60, 1}
		for i, part := range parts {
			value, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("parse duration %q: %w", raw, err)
			}
			if value < 0 || (i > 0 && value >= 60) {
				return 0, fmt.Errorf("parse duration %q: component out of range", raw)
			}
			total += value * multipliers[i]
		}
		return total, nil
	}

	hours, err := parseDecimal(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	seconds := int64(math.Round(hours * 3600))
	if seconds < 0 {
		return 0, fmt.Errorf("hours must not be negative")
	}
	return seconds, nil
}

func parseDecimal(value string) (float64, error) {
	if strings.Contains(value, ",") {
		if strings.Contains(value, ".") {
			value = strings.ReplaceAll(value, ".", "")
		}
		value = strings.ReplaceAll(value, ",", ".")
	}
	return strconv.ParseFloat(value, 64)
}

func parseDateAndTime(dateValue, timeValue string, loc *time.Location) (time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	timeValue = strings.TrimSpace(timeValue)
	if dateValue == "" || timeValue == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}

	datetime := dateValue + " " + timeValue
	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"02.01.2006 03:04 PM",
		"2006-01-02 03:04 PM",
		"01/02/2006 15:04:05",
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, datetime, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date/time format: %q", datetime)
}

// parseDateTime keeps an explicit offset and otherwise interprets the value
// in loc.
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"02.01.2006 15:04",
		"02.01.2006 03:04 PM",
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", value)
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "no", "n", "false", "0", "nein":
		return false, nil
	case "yes", "y", "true", "1", "ja":
		return true, nil
	default:
		return false, fmt.Errorf("parse boolean %q", value)
	}
}

// parseTags splits on commas and semicolons and drops empty items.
func parseTags(value string) []string {
	fields := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == ';'
	})
	tags := make([]string, 0, len(fields))
	for _, field := range fields {
		if tag := strings.TrimSpace(field); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"togglassistant/internal/timeutil"
	"togglassistant/timeentry"
)

// Row is one exported entry with its local lifecycle state and the project
// name resolved for display.
type Row struct {
	Entry   timeentry.Entry
	State   string
	Project string
}

type Writer interface {
	Write(path string, rows []Row) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

var entryHeaders = []string{"ID", "State", "WorkspaceID", "Start", "Stop", "DurationSeconds", "Duration", "Description", "ProjectID", "Project", "Tags", "Billable"}

func entryValues(row Row) []string {
	entry := row.Entry
	stop := ""
	if value, ok := entry.ComputedStop(); ok {
		stop = value.Format(time.RFC3339)
	}
	duration := "running"
	if !entry.IsRunning() {
		duration = timeutil.FormatSeconds(entry.Duration)
	}
	projectID := ""
	if entry.ProjectID != nil {
		projectID = strconv.FormatInt(*entry.ProjectID, 10)
	}

	return []string{
		strconv.FormatInt(entry.ID, 10),
		row.State,
		strconv.FormatInt(entry.WorkspaceID, 10),
		entry.Start.Format(time.RFC3339),
		stop,
		strconv.FormatInt(entry.Duration, 10),
		duration,
		entry.DescriptionOrEmpty(),
		projectID,
		row.Project,
		strings.Join(entry.Tags, ", "),
		strconv.FormatBool(entry.Billable),
	}
}

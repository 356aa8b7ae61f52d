package toggl

import (
	"time"

	"togglassistant/timeentry"
)

// apiTimeEntry is the Toggl v9 wire shape of a time entry.
type apiTimeEntry struct {
	ID          int64      `json:"id,omitempty"`
	WorkspaceID int64      `json:"workspace_id"`
	ProjectID   *int64     `json:"project_id"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
	Description *string    `json:"description"`
	Tags        []string   `json:"tags"`
	Billable    bool       `json:"billable"`
	CreatedWith string     `json:"created_with,omitempty"`
}

// toRecord converts the wire shape. Toggl reports running entries with a
// negative duration (minus the start as unix seconds); those become
// timeentry.RunningDuration.
func (a apiTimeEntry) toRecord() timeentry.Record {
	record := timeentry.Record{
		ID:          a.ID,
		WorkspaceID: a.WorkspaceID,
		Start:       a.Start,
		Stop:        a.Stop,
		Duration:    a.Duration,
		Description: a.Description,
		ProjectID:   a.ProjectID,
		Tags:        a.Tags,
		Billable:    a.Billable,
	}
	if record.Duration < 0 {
		record.Duration = timeentry.RunningDuration
		record.Stop = nil
	}
	if record.Tags == nil {
		record.Tags = []string{}
	}
	return record
}

func fromRecord(record timeentry.Record) apiTimeEntry {
	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	out := apiTimeEntry{
		ID:          record.ID,
		WorkspaceID: record.WorkspaceID,
		ProjectID:   record.ProjectID,
		Start:       record.Start.UTC(),
		Stop:        nil,
		Duration:    record.Duration,
		Description: record.Description,
		Tags:        tags,
		Billable:    record.Billable,
	}
	if record.Stop != nil {
		stop := record.Stop.UTC()
		out.Stop = &stop
	}
	return out
}

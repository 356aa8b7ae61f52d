package timeentry

import (
	"fmt"
	"time"
)

// Record is the canonical, field-complete representation of an entry. It is
// the element of the persisted snapshot and the payload exchanged with the
// remote service. Lifecycle state is never part of it.
type Record struct {
	ID          int64      `json:"id"`
	WorkspaceID int64      `json:"workspace_id"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
	Description *string    `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	Tags        []string   `json:"tags"`
	Billable    bool       `json:"billable"`
}

// Record serializes the entry; Stop is derived from Start and Duration.
func (e Entry) Record() Record {
	fields := e.Fields.clone()
	record := Record{
		ID:          e.ID,
		WorkspaceID: fields.WorkspaceID,
		Start:       fields.Start,
		Duration:    fields.Duration,
		Description: fields.Description,
		ProjectID:   fields.ProjectID,
		Tags:        fields.Tags,
		Billable:    fields.Billable,
	}
	if stop, ok := e.ComputedStop(); ok {
		record.Stop = &stop
	}
	return record
}

// FromRecord validates a persisted or remote record into an Entry. A stop
// value that disagrees with start and duration is rejected.
func FromRecord(record Record) (Entry, error) {
	entry, err := New(record.ID, Fields{
		WorkspaceID: record.WorkspaceID,
		Start:       record.Start,
		Duration:    record.Duration,
		Description: record.Description,
		ProjectID:   record.ProjectID,
		Tags:        record.Tags,
		Billable:    record.Billable,
	})
	if err != nil {
		return Entry{}, err
	}

	stop, hasStop := entry.ComputedStop()
	switch {
	case record.Stop == nil && hasStop:
		// Older snapshots and some API responses omit stop for finished entries.
	case record.Stop != nil && !hasStop:
		return Entry{}, &ValidationError{Field: "stop", Reason: "must be absent for a running entry"}
	case record.Stop != nil && !record.Stop.Equal(stop):
		return Entry{}, &ValidationError{
			Field:  "stop",
			Reason: fmt.Sprintf("%s does not equal start + duration (%s)", record.Stop.Format(time.RFC3339), stop.Format(time.RFC3339)),
		}
	}
	return entry, nil
}

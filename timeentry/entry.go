package timeentry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RunningDuration marks an entry that has been started but not stopped.
const RunningDuration int64 = -1

// MaxDuration is the longest duration, in seconds, whose stop time can still
// be computed as a time.Duration offset from Start.
const MaxDuration = math.MaxInt64 / int64(time.Second)

// Fields holds the user-editable values of a time entry.
type Fields struct {
	WorkspaceID int64     `json:"workspace_id" validate:"gt=0"`
	Start       time.Time `json:"start"`
	Duration    int64     `json:"duration" validate:"gte=-1"`
	Description *string   `json:"description"`
	ProjectID   *int64    `json:"project_id" validate:"omitempty,gt=0"`
	Tags        []string  `json:"tags" validate:"dive,required"`
	Billable    bool      `json:"billable"`
}

// Entry is one validated time-tracking record. Values are treated as immutable:
// changes go through Apply, which returns a new Entry.
type Entry struct {
	ID int64
	Fields
}

// New validates fields and returns an Entry with the given identifier.
func New(id int64, fields Fields) (Entry, error) {
	if err := fields.validate(); err != nil {
		return Entry{}, err
	}
	return Entry{ID: id, Fields: fields.clone()}, nil
}

func (e Entry) IsRunning() bool {
	return e.Duration == RunningDuration
}

// ComputedStop returns Start+Duration, or false for a running entry.
func (e Entry) ComputedStop() (time.Time, bool) {
	if e.IsRunning() {
		return time.Time{}, false
	}
	return e.Start.Add(time.Duration(e.Duration) * time.Second), true
}

// WithID returns a copy of the entry carrying a different identifier.
func (e Entry) WithID(id int64) Entry {
	out := e.clone()
	out.ID = id
	return out
}

// DescriptionOrEmpty returns the description text, or "" when absent.
func (e Entry) DescriptionOrEmpty() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

func (e Entry) String() string {
	stop := "running"
	if value, ok := e.ComputedStop(); ok {
		stop = value.Format(time.RFC3339)
	}
	description := strings.TrimSpace(e.DescriptionOrEmpty())
	if description == "" {
		description = "No description"
	}
	return fmt.Sprintf("[%d] %s - %s | %s", e.ID, e.Start.Format(time.RFC3339), stop, description)
}

func (e Entry) clone() Entry {
	return Entry{ID: e.ID, Fields: e.Fields.clone()}
}

func (f Fields) clone() Fields {
	out := f
	if f.Description != nil {
		description := *f.Description
		out.Description = &description
	}
	if f.ProjectID != nil {
		projectID := *f.ProjectID
		out.ProjectID = &projectID
	}
	out.Tags = append([]string{}, f.Tags...)
	return out
}

// ParseTimestamp parses an RFC 3339 timestamp. The UTC offset is mandatory so
// every stored start time carries timezone information.
func ParseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:  "start",
			Reason: fmt.Sprintf("timestamp %q must be RFC 3339 with a UTC offset", value),
		}
	}
	return parsed, nil
}

// StringPtr returns nil for blank values so optional text stays absent.
func StringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	out := value
	return &out
}

func Int64Ptr(value int64) *int64 {
	out := value
	return &out
}

// IsPlaceholder reports whether the entry still carries a locally issued
// identifier, i.e. it has never been created remotely.
func (e Entry) IsPlaceholder() bool {
	return e.ID < 0
}

package timeentry

import "time"

// Patch carries a partial update. Nil fields are left unchanged.
type Patch struct {
	WorkspaceID      *int64
	Start            *time.Time
	Duration         *int64
	Stop             *time.Time
	Description      *string
	ClearDescription bool
	ProjectID        *int64
	ClearProject     bool
	Tags             *[]string
	Billable         *bool
}

// IsEmpty reports whether the patch would change nothing.
func (p Patch) IsEmpty() bool {
	return p.WorkspaceID == nil &&
		p.Start == nil &&
		p.Duration == nil &&
		p.Stop == nil &&
		p.Description == nil &&
		!p.ClearDescription &&
		p.ProjectID == nil &&
		!p.ClearProject &&
		p.Tags == nil &&
		p.Billable == nil
}

// Apply returns a new validated Entry with the patch applied. The receiver is
// not modified. Stop, when set, wins over Duration and is converted to whole
// seconds after Start; a sub-second remainder is dropped, so ComputedStop only
// reproduces Stop exactly when both are whole-second instants.
func (e Entry) Apply(p Patch) (Entry, error) {
	fields := e.Fields.clone()

	if p.WorkspaceID != nil {
		fields.WorkspaceID = *p.WorkspaceID
	}
	if p.Start != nil {
		fields.Start = *p.Start
	}
	if p.Duration != nil {
		fields.Duration = *p.Duration
	}
	if p.Stop != nil {
		if p.Stop.Before(fields.Start) {
			return Entry{}, &ValidationError{Field: "stop", Reason: "must not be before start"}
		}
		fields.Duration = int64(p.Stop.Sub(fields.Start) / time.Second)
	}
	if p.ClearDescription {
		fields.Description = nil
	}
	if p.Description != nil {
		description := *p.Description
		fields.Description = &description
	}
	if p.ClearProject {
		fields.ProjectID = nil
	}
	if p.ProjectID != nil {
		projectID := *p.ProjectID
		fields.ProjectID = &projectID
	}
	if p.Tags != nil {
		fields.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Billable != nil {
		fields.Billable = *p.Billable
	}

	return New(e.ID, fields)
}

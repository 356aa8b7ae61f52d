package importer

import (
	"fmt"
	"strconv"
	"time"

	"togglassistant/timeentry"
)

// MapContext carries the values a mapper needs beyond the row itself.
type MapContext struct {
	WorkspaceID int64
	Location    *time.Location
	// ResolveProject maps a project name to its identifier.
	ResolveProject func(name string) (int64, error)
	// Defaults from a matched import rule; row values win.
	Project  string
	Tags     []string
	Billable *bool
}

type Mapper interface {
	Name() string
	Map(record Record, ctx MapContext) (timeentry.Fields, bool, error)
}

func SupportedMapperNames() []string {
	return []string{"toggl", "generic"}
}

func MapperByName(name string) (Mapper, error) {
	switch normalizeHeader(name) {
	case "toggl", "":
		return &TogglMapper{}, nil
	case "generic":
		return &GenericMapper{}, nil
	default:
		return nil, fmt.Errorf("unsupported mapper: %s", name)
	}
}

// finishFields applies the shared project, tag and billable columns with
// rule defaults as fallback.
func finishFields(record Record, ctx MapContext, fields timeentry.Fields) (timeentry.Fields, error) {
	fields.WorkspaceID = ctx.WorkspaceID

	if raw := record.Get("project_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fields, fmt.Errorf("row %d: parse project id %q: %w", record.RowNumber, raw, err)
		}
		fields.ProjectID = &id
	} else if name := fallback(record.Get("project", "projekt"), ctx.Project); name != "" {
		if ctx.ResolveProject == nil {
			return fields, fmt.Errorf("row %d: cannot resolve project %q without a project map", record.RowNumber, name)
		}
		id, err := ctx.ResolveProject(name)
		if err != nil {
			return fields, fmt.Errorf("row %d: %w", record.RowNumber, err)
		}
		fields.ProjectID = &id
	}

	if raw := record.Get("tags", "tag"); raw != "" {
		fields.Tags = parseTags(raw)
	} else {
		fields.Tags = append([]string{}, ctx.Tags...)
	}

	if raw := record.Get("billable", "abrechenbar"); raw != "" {
		billable, err := parseBool(raw)
		if err != nil {
			return fields, fmt.Errorf("row %d: %w", record.RowNumber, err)
		}
		fields.Billable = billable
	} else if ctx.Billable != nil {
		fields.Billable = *ctx.Billable
	}

	return fields, nil
}

func fallback(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func location(ctx MapContext) *time.Location {
	if ctx.Location == nil {
		return time.Local
	}
	return ctx.Location
}

package importer

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"togglassistant/config"
	"togglassistant/timeentry"
)

// Row is one mapped and validated input row.
type Row struct {
	SourceFile string
	RowNumber  int
	Fields     timeentry.Fields
}

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Rows           []Row
}

type RunOptions struct {
	WorkspaceID    int64
	Location       *time.Location
	ResolveProject func(name string) (int64, error)
	Rules          []config.ImportRule
	// Project overrides the project of every matched rule.
	Project string
}

// Run reads and maps all files. Any mapping or validation error aborts the
// whole run, so callers either import every row or none.
func Run(paths []string, format string, mapper Mapper, options RunOptions) (*Result, error) {
	result := &Result{Rows: make([]Row, 0, 256)}
	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		ctx := contextForFile(path, options)

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			fields, ok, mapErr := mapper.Map(record, ctx)
			if mapErr != nil {
				return nil, fmt.Errorf("%s: %w", path, mapErr)
			}
			if !ok {
				result.RowsSkipped++
				continue
			}
			if _, err := timeentry.New(0, fields); err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", path, record.RowNumber, err)
			}

			result.RowsMapped++
			result.Rows = append(result.Rows, Row{SourceFile: path, RowNumber: record.RowNumber, Fields: fields})
		}
	}

	return result, nil
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "tsv":
		return "tsv", nil
	case "xlsx", "xlsm", "xls":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

func contextForFile(path string, options RunOptions) MapContext {
	rule := MatchRuleByTemplate(path, options.Rules)
	return MapContext{
		WorkspaceID:    options.WorkspaceID,
		Location:       options.Location,
		ResolveProject: options.ResolveProject,
		Project:        firstNonEmpty(options.Project, rule.Project),
		Tags:           rule.Tags,
		Billable:       rule.Billable,
	}
}

func MatchRuleByTemplate(path string, rules []config.ImportRule) config.ImportRule {
	baseName := filepath.Base(path)
	for _, rule := range rules {
		template := strings.TrimSpace(rule.FileTemplate)
		if template == "" {
			continue
		}
		matchesBase, err := filepath.Match(template, baseName)
		if err == nil && matchesBase {
			return rule
		}
		matchesFull, err := filepath.Match(template, path)
		if err == nil && matchesFull {
			return rule
		}
	}
	return config.ImportRule{}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

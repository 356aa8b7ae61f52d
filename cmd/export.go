package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/internal/timeutil"
	"togglassistant/output"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

var (
	exportFormat string
	exportMode   string
	exportOutput string
	exportStates []string
	exportAll    bool
	exportFrom   string
	exportTo     string
	exportTZ     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export local time entries to CSV/Excel",
	Long: `Export entries of the local store.

Modes:
- raw: export each entry with its lifecycle state and project name
- daily: export per-day aggregates (first start/last end, tracked hours, billable hours,
  break hours, overlapping hours); running entries are left out

Deleted entries are excluded unless --all or --state deleted is given.
Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Export raw rows to CSV
  togglassistant export --mode raw --output ./entries.csv

  # Export only unsynced entries to Excel
  togglassistant export --state new --state modified --output ./pending.xlsx

  # Export daily summary of January
  togglassistant export --mode daily --from 2025-01-01 --to 2025-01-31 --output ./daily-summary.csv

  # Force Excel format independent of extension
  togglassistant export --mode daily --format excel --output ./daily-summary.out
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = detectExportFormat(exportOutput)
		}
		states, err := parseStates(exportStates, exportAll)
		if err != nil {
			return err
		}
		loc, err := resolveLocation(exportTZ)
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, commandLogger(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		items := store.Query(states...)
		if strings.TrimSpace(exportFrom) != "" {
			from, to, err := timeutil.ParseDayRange(exportFrom, exportTo, loc)
			if err != nil {
				return err
			}
			items = filterItemsByRange(items, from, to)
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Entry.Start.Before(items[j].Entry.Start)
		})

		mode := strings.TrimSpace(strings.ToLower(exportMode))
		switch mode {
		case "", "raw":
			writer, writerErr := output.WriterForFormat(format)
			if writerErr != nil {
				return writerErr
			}
			rows := exportRows(items, projectNames(cfg), loc)
			if err := writer.Write(exportOutput, rows); err != nil {
				return err
			}
			fmt.Printf("Export completed. Rows: %d, Mode: raw, Format: %s, File: %s\n", len(rows), format, exportOutput)
		case "daily":
			entries := make([]timeentry.Entry, 0, len(items))
			for _, item := range items {
				entries = append(entries, item.Entry)
			}
			summaries := output.BuildDailySummaries(entries, loc)
			if err := output.WriteDailySummaries(exportOutput, format, summaries); err != nil {
				return err
			}
			fmt.Printf("Export completed. Days: %d, Mode: daily, Format: %s, File: %s\n", len(summaries), format, exportOutput)
		default:
			return fmt.Errorf("unsupported export mode: %s (supported: raw, daily)", exportMode)
		}
		return nil
	},
}

func exportRows(items []storage.Item, projects map[int64]string, loc *time.Location) []output.Row {
	rows := make([]output.Row, 0, len(items))
	for _, item := range items {
		entry := item.Entry
		entry.Start = entry.Start.In(loc)
		row := output.Row{Entry: entry, State: item.State.String()}
		if entry.ProjectID != nil {
			row.Project = projects[*entry.ProjectID]
		}
		rows = append(rows, row)
	}
	return rows
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportMode, "mode", "raw", "Export mode: raw|daily")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringArrayVar(&exportStates, "state", nil, "Only entries in this state (repeatable)")
	exportCmd.Flags().BoolVarP(&exportAll, "all", "a", false, "Include deleted entries")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First start day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last start day (YYYY-MM-DD, default: --from)")
	exportCmd.Flags().StringVar(&exportTZ, "tz", "", "IANA timezone for timestamps and day boundaries (default: local)")

	_ = exportCmd.MarkFlagRequired("output")
}

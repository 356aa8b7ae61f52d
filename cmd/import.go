package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/importer"
	"togglassistant/reconcile"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

var (
	importInputs    []string
	importFormat    string
	importMapper    string
	importProject   string
	importWorkspace int64
	importTZ        string
	importSyncMode  string
	importTimeout   time.Duration
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV/Excel time entries into the local store",
	Long: `Read source files, map each row via the selected mapper, and add the results to the
local store as "new" entries.

Use mapper "toggl" for Toggl detailed report exports and mapper "generic" for
structured CSV/Excel inputs (start/end or date/from/to columns).
When --format is omitted, format is inferred from each input file extension.

Project, tags, and billable defaults come from the first import.rules entry whose
file_template matches the file name; row values win. --project overrides the rule
project. Rows without a UTC offset are read in --tz (default: local timezone).

Every row is validated before anything is stored: one invalid row aborts the import.`,
	Example: `
  # Import a Toggl detailed report export
  togglassistant import -i TogglTrack_Report.csv

  # Import a generic Excel sheet for one project
  togglassistant import -i timesheet.xlsx --mapper generic --project "Client Work"

  # Import and push to Toggl right away
  togglassistant import -i timesheet.csv --mapper generic --sync on

  # Import with custom config file
  togglassistant --configFile ./custom.yaml import -i ./source.xlsx --mapper generic
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		shouldSync, err := resolveSyncMode(importSyncMode, cfg.Import.SyncAfterImport)
		if err != nil {
			return err
		}

		mapper, err := importer.MapperByName(importMapper)
		if err != nil {
			return err
		}
		loc, err := resolveLocation(importTZ)
		if err != nil {
			return err
		}

		workspaceID := importWorkspace
		if workspaceID <= 0 {
			if err := cfg.RequireWorkspace(); err != nil {
				return err
			}
			workspaceID = cfg.WorkspaceID
		}

		result, err := importer.Run(importInputs, importFormat, mapper, importer.RunOptions{
			WorkspaceID:    workspaceID,
			Location:       loc,
			ResolveProject: cfg.ResolveProject,
			Rules:          cfg.Import.Rules,
			Project:        importProject,
		})
		if err != nil {
			return err
		}

		logger := commandLogger()
		store, closeStore, err := openStore(cfg, logger, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		if err := runImport(cmd.OutOrStdout(), store, result); err != nil {
			return err
		}

		if shouldSync {
			client, err := newTogglClient(cfg, logger)
			if err != nil {
				return err
			}
			ctx, cancel := timeoutContext(importTimeout)
			defer cancel()
			fmt.Fprintln(cmd.OutOrStdout(), "Syncing imported entries...")
			return runSync(ctx, cmd.OutOrStdout(), reconcile.NewEngine(store, client, logger))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|tsv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVarP(&importMapper, "mapper", "m", "toggl", "Mapper to normalize input data: "+strings.Join(importer.SupportedMapperNames(), "|"))
	importCmd.Flags().StringVarP(&importProject, "project", "p", "", "Project name for all rows without a project column (overrides matching import rule)")
	importCmd.Flags().Int64Var(&importWorkspace, "workspace", 0, "Workspace id (default: workspace_id from config)")
	importCmd.Flags().StringVar(&importTZ, "tz", "", "IANA timezone for rows without UTC offset (default: local)")
	importCmd.Flags().StringVar(&importSyncMode, "sync", "auto", "Sync after import: auto|on|off (auto uses import.sync_after_import)")
	importCmd.Flags().DurationVar(&importTimeout, "timeout", 5*time.Minute, "Timeout for the sync after import")

	_ = importCmd.MarkFlagRequired("input")
}

func runImport(w io.Writer, store *storage.Store, result *importer.Result) error {
	batch := make([]timeentry.Fields, 0, len(result.Rows))
	for _, row := range result.Rows {
		batch = append(batch, row.Fields)
	}

	ids, err := store.AddAll(batch)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Import completed. Files: %d, Rows read: %d, Rows mapped: %d, Rows skipped: %d, Entries added: %d\n",
		result.FilesProcessed,
		result.RowsRead,
		result.RowsMapped,
		result.RowsSkipped,
		len(ids),
	)
	return nil
}

func resolveSyncMode(mode string, configDefault bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return configDefault, nil
	case "on", "true", "yes":
		return true, nil
	case "off", "false", "no":
		return false, nil
	default:
		return false, fmt.Errorf("invalid sync mode %q (supported: auto|on|off)", mode)
	}
}

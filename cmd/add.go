package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"togglassistant/config"
	"togglassistant/internal/timeutil"
	"togglassistant/storage"
	"togglassistant/timeentry"
)

type addOptions struct {
	Description string
	Start       string
	Stop        string
	Duration    time.Duration
	Project     string
	ProjectID   int64
	Tags        []string
	Billable    bool
	WorkspaceID int64
}

var addOpts addOptions

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a time entry to the local store",
	Long: `Add a time entry locally. The entry gets a negative placeholder id and state "new"
until "sync" creates it on Toggl.

Start and stop accept RFC 3339 timestamps or natural expressions ("2 hours ago",
"yesterday at 9am"). Without --start the entry starts now. Without --duration and
--stop the entry is running.

The project can be given by name (resolved through the configured projects map) or id.`,
	Example: `
  # Finished entry with explicit start and duration
  togglassistant add --description "Code review" --start 2025-01-10T09:00:00+01:00 --duration 1h30m

  # Running entry starting now, on a configured project
  togglassistant add --description "Support" --project "Client Work" --tag support --billable

  # Entry by start/stop expressions
  togglassistant add --description "Standup" --start "today at 9:30am" --stop "today at 9:45am"
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		fields, err := buildAddFields(addOpts, cfg, time.Now())
		if err != nil {
			return err
		}

		store, closeStore, err := openStore(cfg, commandLogger(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer closeStore()

		return runAdd(cmd.OutOrStdout(), store, fields)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addOpts.Description, "description", "d", "", "Entry description")
	addCmd.Flags().StringVarP(&addOpts.Start, "start", "s", "", "Start time (RFC 3339 or natural expression; default: now)")
	addCmd.Flags().StringVar(&addOpts.Stop, "stop", "", "Stop time (RFC 3339 or natural expression)")
	addCmd.Flags().DurationVar(&addOpts.Duration, "duration", 0, "Duration, e.g. 45m or 1h30m")
	addCmd.Flags().StringVarP(&addOpts.Project, "project", "p", "", "Project name from the configured projects map")
	addCmd.Flags().Int64Var(&addOpts.ProjectID, "project-id", 0, "Project id")
	addCmd.Flags().StringArrayVarP(&addOpts.Tags, "tag", "t", nil, "Tag (repeatable)")
	addCmd.Flags().BoolVarP(&addOpts.Billable, "billable", "b", false, "Mark the entry billable")
	addCmd.Flags().Int64Var(&addOpts.WorkspaceID, "workspace", 0, "Workspace id (default: workspace_id from config)")
}

func runAdd(w io.Writer, store *storage.Store, fields timeentry.Fields) error {
	id, err := store.Add(fields)
	if err != nil {
		if id != 0 {
			fmt.Fprintf(w, "Entry %d added in memory but not saved.\n", id)
		}
		return err
	}

	duration := "running"
	if fields.Duration != timeentry.RunningDuration {
		duration = timeutil.FormatSeconds(fields.Duration)
	}
	fmt.Fprintf(w, "Added entry %d (%s, %s). Run \"togglassistant sync\" to create it on Toggl.\n",
		id, fields.Start.Format(time.RFC3339), duration)
	return nil
}

func buildAddFields(opts addOptions, cfg *config.Config, now time.Time) (timeentry.Fields, error) {
	workspaceID := opts.WorkspaceID
	if workspaceID <= 0 {
		if err := cfg.RequireWorkspace(); err != nil {
			return timeentry.Fields{}, err
		}
		workspaceID = cfg.WorkspaceID
	}

	start := now.Truncate(time.Second)
	if strings.TrimSpace(opts.Start) != "" {
		parsed, err := parseMoment(opts.Start, now)
		if err != nil {
			return timeentry.Fields{}, fmt.Errorf("--start: %w", err)
		}
		start = parsed
	}

	duration, err := resolveDuration(start, opts.Duration, opts.Stop, now)
	if err != nil {
		return timeentry.Fields{}, err
	}

	projectID, err := resolveProjectFlag(cfg, opts.Project, opts.ProjectID)
	if err != nil {
		return timeentry.Fields{}, err
	}

	fields := timeentry.Fields{
		WorkspaceID: workspaceID,
		Start:       start,
		Duration:    duration,
		Description: timeentry.StringPtr(opts.Description),
		ProjectID:   projectID,
		Tags:        cleanTags(opts.Tags),
		Billable:    opts.Billable,
	}
	if _, err := timeentry.New(0, fields); err != nil {
		return timeentry.Fields{}, err
	}
	return fields, nil
}

// resolveDuration turns --duration / --stop into seconds. Neither means the
// entry is running.
func resolveDuration(start time.Time, duration time.Duration, stop string, now time.Time) (int64, error) {
	hasStop := strings.TrimSpace(stop) != ""
	switch {
	case duration != 0 && hasStop:
		return 0, fmt.Errorf("use either --duration or --stop, not both")
	case duration < 0:
		return 0, fmt.Errorf("--duration must not be negative")
	case duration > 0:
		return int64(duration / time.Second), nil
	case hasStop:
		stopAt, err := parseMoment(stop, now)
		if err != nil {
			return 0, fmt.Errorf("--stop: %w", err)
		}
		if stopAt.Before(start) {
			return 0, fmt.Errorf("--stop %s is before start %s", stopAt.Format(time.RFC3339), start.Format(time.RFC3339))
		}
		return int64(stopAt.Sub(start) / time.Second), nil
	default:
		return timeentry.RunningDuration, nil
	}
}

func resolveProjectFlag(cfg *config.Config, name string, id int64) (*int64, error) {
	name = strings.TrimSpace(name)
	switch {
	case name != "" && id != 0:
		return nil, fmt.Errorf("use either --project or --project-id, not both")
	case name != "":
		resolved, err := cfg.ResolveProject(name)
		if err != nil {
			return nil, err
		}
		return timeentry.Int64Ptr(resolved), nil
	case id < 0:
		return nil, fmt.Errorf("--project-id must be positive")
	case id > 0:
		return timeentry.Int64Ptr(id), nil
	default:
		return nil, nil
	}
}

func cleanTags(values []string) []string {
	tags := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if tag := strings.TrimSpace(part); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
